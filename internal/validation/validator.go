// Package validation wraps go-playground/validator and converts its failures
// into apperrors validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/bookstore/internal/apperrors"
)

// Price bounds for decimal(5,2): three integer digits and two fractional digits.
const (
	priceDecimalPlaces = 2
	priceIntegerLimit  = 1000
)

// Validator validates request payloads.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports JSON tag names and understands
// decimal.Decimal fields through the "price" tag.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ValidPrice(d)
	})

	return &Validator{v: v}
}

// ValidPrice reports whether d fits a decimal(5,2) column.
func ValidPrice(d decimal.Decimal) bool {
	if !d.Round(priceDecimalPlaces).Equal(d) {
		return false
	}
	return d.Abs().LessThan(decimal.NewFromInt(priceIntegerLimit))
}

// Validate validates a struct and returns an apperrors validation error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}
	return apperrors.ValidationWithDetails(fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", e.Param())
	case "min":
		if e.Kind() == reflect.String && e.Param() == "1" {
			return "This field may not be blank."
		}
		if e.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", e.Param())
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	case "price":
		return "Ensure that there are no more than 3 digits before and 2 digits after the decimal point."
	default:
		return "Invalid value."
	}
}
