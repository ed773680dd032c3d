package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	valid := func() CreateUserRequest {
		return CreateUserRequest{
			Name:     "Jordan Miles",
			Email:    "jordan@example.com",
			Password: "open-sesame-9",
		}
	}

	t.Run("all fields present", func(t *testing.T) {
		r := valid()
		require.NoError(t, r.Validate())
	})

	t.Run("password at minimum length", func(t *testing.T) {
		r := valid()
		r.Password = "12345678"
		require.NoError(t, r.Validate())
	})

	breakers := []struct {
		name   string
		mutate func(*CreateUserRequest)
	}{
		{"missing name", func(r *CreateUserRequest) { r.Name = "" }},
		{"missing email", func(r *CreateUserRequest) { r.Email = "" }},
		{"malformed email", func(r *CreateUserRequest) { r.Email = "not-an-email" }},
		{"missing password", func(r *CreateUserRequest) { r.Password = "" }},
		{"password below minimum", func(r *CreateUserRequest) { r.Password = "1234567" }},
	}

	for _, tt := range breakers {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			require.Error(t, r.Validate())
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	good := LoginRequest{Email: "jordan@example.com", Password: "open-sesame-9"}
	require.NoError(t, good.Validate())

	noPassword := LoginRequest{Email: "jordan@example.com"}
	require.Error(t, noPassword.Validate())

	badEmail := LoginRequest{Email: "not-an-email", Password: "open-sesame-9"}
	require.Error(t, badEmail.Validate())
}

func TestUpdatePasswordRequest_Validate(t *testing.T) {
	good := UpdatePasswordRequest{CurrentPassword: "former-pass-1", NewPassword: "replacement-pass-2"}
	require.NoError(t, good.Validate())

	noCurrent := UpdatePasswordRequest{NewPassword: "replacement-pass-2"}
	require.Error(t, noCurrent.Validate())

	shortNew := UpdatePasswordRequest{CurrentPassword: "former-pass-1", NewPassword: "short"}
	require.Error(t, shortNew.Validate())
}
