// Package validate holds the shared struct validator used to reject malformed
// roster entities before they can be constructed or persisted.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/roster-sheets/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const (
	DateLayout = "2006-01-02"
	// ClockLayout is the written form of a time of day.
	ClockLayout = "15:04"
	// clockInput also accepts one-digit hours and minutes, e.g. "9:5".
	clockInput = "15:4"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

var validate = newValidator()

type enumValue interface {
	IsValid() bool
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "roster_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	mustRegister(v, "roster_phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "roster_date", func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
	mustRegister(v, "roster_clock", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	mustRegister(v, "roster_enum", func(fl validator.FieldLevel) bool {
		if e, ok := fl.Field().Interface().(enumValue); ok {
			return e.IsValid()
		}
		return false
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Struct validates an entity and returns a VALIDATION_ERROR naming the first
// offending field, with every failing field listed in the details.
func Struct(entity string, value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, entity+" validation failed")
	}

	details := map[string]string{}
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = validationMessage(fieldErr)
	}
	first := errs[0]
	msg := fmt.Sprintf("invalid %s: %s %s", entity, first.Field(), validationMessage(first))
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

// Field builds a VALIDATION_ERROR for checks that span more than one field.
func Field(entity, field, message string) error {
	msg := fmt.Sprintf("invalid %s: %s %s", entity, field, message)
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]string{field: message})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "roster_email":
		return "must be a valid email"
	case "roster_phone":
		return "must contain 10 or 11 digits"
	case "roster_date":
		return "must be a date in YYYY-MM-DD format"
	case "roster_clock":
		return "must be a time in HH:MM format"
	case "roster_enum":
		return fmt.Sprintf("has unknown value %q", fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}

func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsPhone strips every non-digit and accepts 10 (US) or 11 (with country code) digits.
func IsPhone(value string) bool {
	digits := nonDigits.ReplaceAllString(value, "")
	return len(digits) == 10 || len(digits) == 11
}

func IsDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

func IsClock(value string) bool {
	_, err := ParseClock(value)
	return err == nil
}

// ParseClock reads an HH:MM time of day. Either part may be a single digit.
func ParseClock(value string) (time.Time, error) {
	return time.Parse(clockInput, value)
}
