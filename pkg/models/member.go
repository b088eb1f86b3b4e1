package models

import (
	"strings"

	"gorm.io/gorm"
)

// Member is a participant of the mess.
//
// Only active members are part of the roster. Deactivating a member keeps
// all of their records.
type Member struct {
	DefaultModel
	MemberEditable
}

type MemberEditable struct {
	Name   string `json:"name" gorm:"uniqueIndex;size:255" example:"Rahim"` // Name of the member, unique
	Active bool   `json:"active" example:"true"`                             // Is the member part of the roster?
}

// BeforeSave trims whitespace from the name.
func (m *Member) BeforeSave(_ *gorm.DB) error {
	m.Name = strings.TrimSpace(m.Name)
	return nil
}
