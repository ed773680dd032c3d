// Package types provides type definitions for structured data used throughout the outreach-agent system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserRequest is the body for registering an API user.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the body for an email/password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdatePasswordRequest is the body for rotating a password. The current
// password re-proves identity even though the request carries a valid token.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// User is the response shape for an API account: db.User minus the password
// hash. Duplicated here because db already imports this package.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse carries the account and its freshly signed session token.
// Register and Login both return it.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Validate checks the registration request's field constraints.
func (r *CreateUserRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the login request's field constraints.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the password change request's field constraints.
func (r *UpdatePasswordRequest) Validate() error {
	return validate.Struct(r)
}
