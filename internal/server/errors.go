package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrValidation reports a request body that failed a field-level check.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrCampaignNotFound reports a campaign ID with no matching batch row.
type ErrCampaignNotFound struct {
	CampaignID uuid.UUID
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign not found: %s", e.CampaignID)
}

// ErrEmailAlreadyExists reports a registration for an email that already
// has an account.
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials reports a failed login. The message never says
// whether the email or the password was wrong.
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound reports an operation on a user ID that does not exist.
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch reports a password change whose current-password
// check failed.
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// HTTPStatus maps a service error to its response status. Matching goes
// through errors.As so a wrapped error still resolves; anything
// unrecognized is a 500.
func HTTPStatus(err error) int {
	var (
		validation    *ErrValidation
		noCampaign    *ErrCampaignNotFound
		dupEmail      *ErrEmailAlreadyExists
		badCreds      *ErrInvalidCredentials
		noUser        *ErrUserNotFound
		wrongPassword *ErrPasswordMismatch
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &noCampaign), errors.As(err, &noUser):
		return http.StatusNotFound
	case errors.As(err, &dupEmail):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &wrongPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
