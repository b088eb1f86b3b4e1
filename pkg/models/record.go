package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Record is the shape shared by all record stores: a quantity for one member on one day.
//
// There is at most one record per member and date in each store.
type Record struct {
	DefaultModel
	MemberID uuid.UUID       `json:"memberId" gorm:"index:,unique,composite:member_date" example:"5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4"`
	Date     time.Time       `json:"date" gorm:"index:,unique,composite:member_date" example:"2024-05-04T00:00:00Z"`
	Quantity decimal.Decimal `json:"quantity" gorm:"type:DECIMAL(20,8)" example:"2.5"`
}

// BeforeSave truncates the date to midnight UTC of its calendar day.
func (r *Record) BeforeSave(_ *gorm.DB) error {
	year, month, day := r.Date.Date()
	r.Date = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return nil
}

// Meal is the number of meals a member had on a day.
type Meal struct {
	Record
}

// Deposit is money a member paid into the mess on a day.
type Deposit struct {
	Record
}

// ShoppingExpense is money a member spent on shared groceries on a day.
type ShoppingExpense struct {
	Record
	Description string `json:"description" gorm:"size:255" example:"Rice, lentils and oil"`
}

// Utility is a member's share of utility costs (gas, electricity, internet) on a day.
type Utility struct {
	Record
	Description string `json:"description" gorm:"size:255" example:"Electricity bill"`
}

// Kind identifies a record store.
type Kind string

const (
	KindMeal            Kind = "meals"
	KindDeposit         Kind = "deposits"
	KindShoppingExpense Kind = "shopping-expenses"
	KindUtility         Kind = "utilities"
)

// Kinds lists all record stores.
var Kinds = []Kind{KindMeal, KindDeposit, KindShoppingExpense, KindUtility}

// ParseKind returns the Kind for its name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: '%s'", ErrUnknownKind, s)
}

// Table returns the database table of the store.
func (k Kind) Table() string {
	return strings.ReplaceAll(string(k), "-", "_")
}

// HasDescription reports if records of this kind carry a description.
func (k Kind) HasDescription() bool {
	return k == KindShoppingExpense || k == KindUtility
}

// Monetary reports if the quantity is an amount of money. Meal counts are not.
func (k Kind) Monetary() bool {
	return k != KindMeal
}

// Label returns the human readable, singular name of the store.
func (k Kind) Label() string {
	switch k {
	case KindMeal:
		return "meal"
	case KindDeposit:
		return "deposit"
	case KindShoppingExpense:
		return "shopping expense"
	case KindUtility:
		return "utility"
	}
	return string(k)
}

// Model returns a new database model of the kind populated with the entry.
func (k Kind) Model(e Entry) any {
	record := Record{
		MemberID: e.MemberID,
		Date:     e.Date,
		Quantity: e.Quantity,
	}

	switch k {
	case KindMeal:
		return &Meal{Record: record}
	case KindDeposit:
		return &Deposit{Record: record}
	case KindShoppingExpense:
		return &ShoppingExpense{Record: record, Description: e.Description}
	case KindUtility:
		return &Utility{Record: record, Description: e.Description}
	}

	return nil
}

// Entry is a record of any store as read from the database.
type Entry struct {
	ID          uuid.UUID
	MemberID    uuid.UUID
	Date        time.Time
	Quantity    decimal.Decimal
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AfterFind normalizes all times to UTC.
func (e *Entry) AfterFind(_ *gorm.DB) error {
	e.Date = e.Date.In(time.UTC)
	e.CreatedAt = e.CreatedAt.In(time.UTC)
	e.UpdatedAt = e.UpdatedAt.In(time.UTC)
	return nil
}
