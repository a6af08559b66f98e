package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	pkgerrors "costedge/backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// itemValidator validates batch items one by one with the same tags gin
// uses for single payloads. Field names come from the json tags.
var itemValidator = newItemValidator()

func newItemValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateItem runs the binding tags of v and returns a *pkgerrors.ValidationError.
func validateItem(v interface{}) error {
	err := itemValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return FromValidator(verrs)
}

// FromValidator converts validator errors into field messages.
func FromValidator(verrs validator.ValidationErrors) *pkgerrors.ValidationError {
	ve := pkgerrors.NewValidationError()
	for _, fe := range verrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "alpha":
		return "must contain letters only"
	default:
		return "is invalid"
	}
}

// ── field helpers ──

func parseDate(ve *pkgerrors.ValidationError, field, s string) datatypes.Date {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		ve.Add(field, "must be a date in YYYY-MM-DD format")
		return datatypes.Date{}
	}
	return datatypes.Date(t)
}

func parseThreshold(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		ve := pkgerrors.NewValidationError()
		ve.Add("threshold", "must be a number")
		return decimal.Zero, ve
	}
	return d, nil
}

func nonNegative(ve *pkgerrors.ValidationError, field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		ve.Add(field, "must not be negative")
	}
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullDecimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func quantityOrOne(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}

// validValues joins enum values for error messages.
func validValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
