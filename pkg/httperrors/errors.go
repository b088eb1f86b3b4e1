package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/go-sqlite"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/rs/zerolog/log"
)

type HTTPError struct {
	Error  string            `json:"error" example:"the request is not valid: quantity: quantity must not be greater than 10"`
	Fields map[string]string `json:"fields,omitempty"` // Problems with the request, keyed by field
}

// Generate a struct containing the HTTP error on the fly.
func New(c *gin.Context, status int, msgAndArgs ...any) {
	// Format msgAndArgs in a final string.
	// This is taken almost exactly from https://github.com/stretchr/testify/blob/181cea6eab8b2de7071383eca4be32a424db38dd/assert/assertions.go#L181
	msg := ""
	if len(msgAndArgs) == 1 {
		if msgAsStr, ok := msgAndArgs[0].(string); ok {
			msg = msgAsStr
		}
		msg = fmt.Sprintf("%+v", msg)
	}

	if len(msgAndArgs) > 1 {
		msg = fmt.Sprintf(msgAndArgs[0].(string), msgAndArgs[1:]...)
	}

	c.JSON(status, HTTPError{
		Error: msg,
	})
}

// Status returns the HTTP status for an error.
func Status(err error) int {
	switch {
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrGeneral), errors.Is(err, ledger.ErrCache):
		return http.StatusInternalServerError
	case reflect.TypeOf(err) == reflect.TypeOf(&sqlite.Error{}):
		return http.StatusInternalServerError
	}

	return http.StatusBadRequest
}

// Handler writes the error response for an error returned by the ledger.
func Handler(c *gin.Context, err error) {
	var validation ledger.ValidationError

	// Validation errors list every problem by field
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, HTTPError{
			Error:  err.Error(),
			Fields: validation.Fields,
		})

		// End of file reached when reading
	} else if errors.Is(err, io.EOF) {
		New(c, http.StatusBadRequest, "The request body must not be empty")

		// Time could not be parsed. Return the error string as tells
		// the problem very well
	} else if reflect.TypeOf(err) == reflect.TypeOf(&time.ParseError{}) {
		New(c, http.StatusBadRequest, err.Error())

		// Server side problems. The message must not leak internals
	} else if status := Status(err); status == http.StatusInternalServerError {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		New(c, status, fmt.Sprintf("An error occurred on the server during your request, please contact your server administrator. The request id is '%v', send this to your server administrator to help them finding the problem", requestid.Get(c)))

		// All other errors explain themselves
	} else {
		New(c, status, err.Error())
	}
}
