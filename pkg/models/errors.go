package models

import (
	"errors"
)

var (
	ErrGeneral             = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound    = errors.New("there is no")
	ErrMemberNameNotUnique = errors.New("the member name must be unique")
	ErrRecordNotUnique     = errors.New("there already is a record for this member on this date")
	ErrUnknownKind         = errors.New("unknown record store")
)
