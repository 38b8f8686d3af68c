package server

import (
	"fmt"
	"net/http"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// ErrNotFound indicates the addressed record does not exist
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrDuplicateApplication indicates the email already applied to the job
type ErrDuplicateApplication struct {
	JobID string
	Email string
}

func (e *ErrDuplicateApplication) Error() string {
	return "You have already applied for this job"
}

// ErrInvalidStatus indicates an application status outside the enum
type ErrInvalidStatus struct {
	Status string
}

func (e *ErrInvalidStatus) Error() string {
	return "Invalid status"
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "Invalid credentials"
}

// ErrConflict indicates the request conflicts with stored state
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrValidation, *ErrInvalidStatus, *ErrDuplicateApplication:
		return http.StatusBadRequest
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrNotFound:
		return http.StatusNotFound
	case *ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
