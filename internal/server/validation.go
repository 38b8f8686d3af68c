package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validationError converts validator output into an ErrValidation. Any
// missing required field yields requiredMsg; otherwise the first failure is
// described.
func validationError(err error, requiredMsg string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Message: "Invalid request"}
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return &ErrValidation{Field: fieldName(fe), Message: requiredMsg}
		}
	}

	fe := fieldErrs[0]
	field := fieldName(fe)
	var msg string
	switch fe.Tag() {
	case "email":
		msg = "Please provide a valid email address"
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return &ErrValidation{Field: field, Message: msg}
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
}
