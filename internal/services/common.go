package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/clinica-dental-api/internal/errs"
	"github.com/harentsoaR/clinica-dental-api/internal/store"
)

// Clock returns the current time. Tests substitute a fixed one.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateInput runs the struct's validate tags and reports every failing
// field in one ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errs.Internal("failed to validate input", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errs.Validation("%s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseID converts a hex id from a request into an ObjectID.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, errs.Validation("invalid %s id", what)
	}
	return id, nil
}

var duplicateMessages = map[string]string{
	store.IndexEmail:        "email is already registered",
	store.IndexRecordNumber: "record number is already registered",
	store.IndexDUI:          "dui is already registered",
	store.IndexName:         "a service with this name already exists",
	store.IndexSlot:         "the doctor already has an appointment at that date and time",
	store.IndexUserRating:   "this appointment has already been rated",
}

// storeError classifies a repository error about the named entity.
func storeError(err error, entity, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return errs.NotFound("%s not found", entity)
	}
	if index, ok := store.DuplicateIndex(err); ok {
		if msg, known := duplicateMessages[index]; known {
			return errs.Conflict("%s", msg)
		}
		return errs.Conflict("%s already exists", entity)
	}
	return errs.Internal(fmt.Sprintf("failed to %s %s", action, entity), err)
}
