package ledger

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mess-ledger/backend/internal/types"
	"github.com/mess-ledger/backend/pkg/models"
	"github.com/shopspring/decimal"
)

// RecordInput is a record as submitted for a write.
type RecordInput struct {
	MemberID    uuid.UUID       `json:"memberId" validate:"required" example:"5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4"`
	Date        types.Date      `json:"date" validate:"required,notfuture" example:"2024-05-04" swaggertype:"string"`
	Quantity    decimal.Decimal `json:"quantity" example:"2.5"`
	Description string          `json:"description" validate:"max=255" example:"Rice and lentils"` // Only stored for shopping expenses and utilities
}

// MemberInput is a member as submitted for a write.
type MemberInput struct {
	Name   string `json:"name" validate:"required,max=255,columnname" example:"Rahim"`
	Active *bool  `json:"active" example:"true"` // Defaults to true on creation
}

// quantityRules are the validation rules for the quantity of each store.
var quantityRules = map[models.Kind]string{
	models.KindMeal:            "gte=0,lte=10,halfstep",
	models.KindDeposit:         "gte=0,lte=99999.99,cents",
	models.KindShoppingExpense: "gte=0,lte=99999.99,cents",
	models.KindUtility:         "gte=0.01,lte=999999.99,cents",
}

// reservedColumns are pivot table keys a member name must not shadow.
var reservedColumns = []string{"date", "total"}

// newValidator returns a validator using JSON field names, with the
// custom tags the ledger needs.
func newValidator(today func() types.Date) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(types.Date); ok {
			return d.Time()
		}
		return nil
	}, types.Date{})

	// Dates must not be after today
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return !types.DateOf(t).After(today())
	})

	// Meal counts come in steps of 0.5
	_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return math.Mod(f*2, 1) == 0
	})

	// Money has at most two decimal places
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		return decimal.NewFromFloat(fl.Field().Float()).Exponent() >= -2
	})

	_ = v.RegisterValidation("columnname", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		for _, reserved := range reservedColumns {
			if strings.EqualFold(name, reserved) {
				return false
			}
		}
		return true
	})

	return v
}

// validateRecord checks the input for a record of the kind.
//
// All problems are reported at once.
func validateRecord(v *validator.Validate, kind models.Kind, in RecordInput) error {
	fields := map[string]string{}

	if err := v.Struct(in); err != nil {
		collect(err, fields)
	}

	if err := v.Var(in.Quantity, quantityRules[kind]); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			for _, e := range errs {
				fields["quantity"] = fieldErrorText("quantity", e)
			}
		}
	}

	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

// validateMember checks a member input.
func validateMember(v *validator.Validate, in MemberInput) error {
	fields := map[string]string{}
	if err := v.Struct(in); err != nil {
		collect(err, fields)
	}

	if len(fields) > 0 {
		return ValidationError{Fields: fields}
	}
	return nil
}

func collect(err error, fields map[string]string) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		fields["_"] = err.Error()
		return
	}

	for _, e := range errs {
		fields[e.Field()] = fieldErrorText(e.Field(), e)
	}
}

// fieldErrorText returns a human readable message for a failed validation.
func fieldErrorText(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s cannot be longer than %s characters", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must not be greater than %s", field, e.Param())
	case "notfuture":
		return fmt.Sprintf("%s cannot be in the future", field)
	case "halfstep":
		return fmt.Sprintf("%s must be a multiple of 0.5", field)
	case "cents":
		return fmt.Sprintf("%s cannot have more than two decimal places", field)
	case "columnname":
		return fmt.Sprintf("%s cannot be one of %s", field, strings.Join(reservedColumns, ", "))
	}
	return fmt.Sprintf("%s is not valid", field)
}
