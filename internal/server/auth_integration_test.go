//go:build integration

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/config"
	"github.com/jonathan/outreach-agent/internal/db"
	"github.com/jonathan/outreach-agent/internal/server/middleware"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests exercise the auth stack against a real PostgreSQL database.
// Set TEST_DATABASE_URL to run them.

func setupIntegrationAuth(t *testing.T) (*AuthHandler, *db.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(ctx))

	passwordConfig := &config.PasswordConfig{
		BcryptCost: 10, // Lower cost for faster tests
	}
	userSvc := NewUserService(database, passwordConfig)
	jwtSvc := newJWTService(24)

	return NewAuthHandler(userSvc, jwtSvc), database
}

func postJSON(handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestIntegration_AuthFlow(t *testing.T) {
	handler, database := setupIntegrationAuth(t)
	defer database.Close()
	ctx := context.Background()

	email := "srv-" + uuid.New().String() + "@example.com"

	// Register
	w := postJSON(handler.Register, "/auth/register", map[string]string{
		"name":     "Integration User",
		"email":    email,
		"password": "testpassword123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var registered types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotNil(t, registered.User)
	assert.NotEmpty(t, registered.Token)
	defer func() {
		if err := database.DeleteUser(ctx, registered.User.ID); err != nil {
			t.Logf("Failed to clean up test user: %v", err)
		}
	}()

	// The stored row carries a hash, never the plaintext password
	dbUser, err := database.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, dbUser)
	assert.Equal(t, registered.User.ID, dbUser.ID)
	assert.NotEmpty(t, dbUser.PasswordHash)
	assert.NotEqual(t, "testpassword123", dbUser.PasswordHash)

	// The issued token identifies the new user
	jwtSvc := newJWTService(24)
	claims, err := jwtSvc.ValidateToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	// The token passes the auth middleware and lands the user ID in context
	var contextUserID uuid.UUID
	protected := middleware.AuthMiddleware(jwtSvc.AsTokenValidator())(
		http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			contextUserID, err = middleware.GetUserID(r)
			require.NoError(t, err)
			rw.WriteHeader(http.StatusOK)
		}))
	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, registered.User.ID, contextUserID)

	// Login with the right and wrong passwords
	w = postJSON(handler.Login, "/auth/login", map[string]string{
		"email": email, "password": "testpassword123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(handler.Login, "/auth/login", map[string]string{
		"email": email, "password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Change the password
	body, _ := json.Marshal(map[string]string{
		"current_password": "testpassword123",
		"new_password":     "rotatedpassword456",
	})
	putReq := httptest.NewRequest(http.MethodPut, "/auth/password", bytes.NewReader(body))
	putReq.Header.Set("Content-Type", "application/json")
	putRec := httptest.NewRecorder()
	handler.UpdatePasswordWithUserID(putRec, putReq, registered.User.ID)
	require.Equal(t, http.StatusOK, putRec.Code)

	// Old password stops working, new one logs in
	w = postJSON(handler.Login, "/auth/login", map[string]string{
		"email": email, "password": "testpassword123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(handler.Login, "/auth/login", map[string]string{
		"email": email, "password": "rotatedpassword456",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_Register_DuplicateEmail(t *testing.T) {
	handler, database := setupIntegrationAuth(t)
	defer database.Close()
	ctx := context.Background()

	email := "srv-" + uuid.New().String() + "@example.com"
	payload := map[string]string{
		"name":     "Integration User",
		"email":    email,
		"password": "testpassword123",
	}

	w := postJSON(handler.Register, "/auth/register", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var registered types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	defer func() {
		if err := database.DeleteUser(ctx, registered.User.ID); err != nil {
			t.Logf("Failed to clean up test user: %v", err)
		}
	}()

	w = postJSON(handler.Register, "/auth/register", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}
