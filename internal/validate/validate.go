// Package validate checks records before they reach a store.
//
// Rules live as `validate` tags on the models; each collection has one entry
// point here so every write path goes through the same checks.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lalith-99/campuslink/internal/apperr"
	"github.com/lalith-99/campuslink/internal/models"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors match the API payloads.
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

func Student(s *models.Student) error {
	return check(s, "invalid profile")
}

func Team(t *models.Team) error {
	if err := check(t, "invalid team"); err != nil {
		return err
	}
	if !t.HasMember(t.CreatedBy) {
		return apperr.Invalid("invalid team", apperr.FieldError{Field: "members", Message: "members must include the creator"})
	}
	return nil
}

func Request(r *models.ConnectionRequest) error {
	if err := check(r, "invalid request"); err != nil {
		return err
	}
	if r.SenderID == r.ReceiverID {
		return apperr.Invalid("you cannot send a connection request to yourself")
	}
	return nil
}

func Message(m *models.Message) error {
	return check(m, "invalid message")
}

func Participation(p *models.Participation) error {
	return check(p, "invalid participation")
}

// Email reports whether s is a well-formed address.
func Email(s string) bool {
	return v.Var(s, "required,email") == nil
}

func check(record any, msg string) error {
	err := v.Struct(record)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return apperr.Invalid(msg, fields...)
}

// fieldPath drops the struct name prefix: "Student.interest_ids[0]" -> "interest_ids[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "can have at most " + fe.Param() + " entries"
		}
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	}
	return "failed " + fe.Tag() + " check"
}
