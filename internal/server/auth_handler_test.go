package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/outreach-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuthHandler builds an AuthHandler over the in-memory fake database, so
// signup and login run end to end without Postgres.
func newAuthHandler() (*AuthHandler, *fakeDB) {
	fake := newFakeDB()
	return NewAuthHandler(newTestUserService(fake), newJWTService(24)), fake
}

// sendJSON drives one of the handler's endpoint methods directly. A string
// body goes out raw, which lets tests send malformed JSON.
func sendJSON(t *testing.T, endpoint func(http.ResponseWriter, *http.Request), method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, ok := body.(string)
	if !ok {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = string(b)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(raw)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	endpoint(w, req)
	return w
}

// signUp registers a user and hands back the session response.
func signUp(t *testing.T, handler *AuthHandler, name, email, password string) *types.LoginResponse {
	t.Helper()

	w := sendJSON(t, handler.Register, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())

	var resp types.LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.User)
	return &resp
}

func TestRegister_IssuesSession(t *testing.T) {
	handler, fake := newAuthHandler()

	resp := signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	assert.Equal(t, "Avery Chen", resp.User.Name)
	assert.Equal(t, "avery@example.com", resp.User.Email)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)

	// The returned token must authenticate as the new user.
	claims, err := newJWTService(24).ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	// Only the bcrypt hash may reach storage.
	stored := fake.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.PasswordHash, "correct-horse-9")
}

func TestRegister_RejectsBadInput(t *testing.T) {
	handler, _ := newAuthHandler()

	t.Run("malformed body", func(t *testing.T) {
		w := sendJSON(t, handler.Register, http.MethodPost, "/auth/register", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})

	fields := []struct {
		name string
		body map[string]string
	}{
		{"no name", map[string]string{"email": "avery@example.com", "password": "correct-horse-9"}},
		{"blank name", map[string]string{"name": "", "email": "avery@example.com", "password": "correct-horse-9"}},
		{"no email", map[string]string{"name": "Avery Chen", "password": "correct-horse-9"}},
		{"bad email", map[string]string{"name": "Avery Chen", "email": "not-an-address", "password": "correct-horse-9"}},
		{"no password", map[string]string{"name": "Avery Chen", "email": "avery@example.com"}},
		{"short password", map[string]string{"name": "Avery Chen", "email": "avery@example.com", "password": "2short"}},
	}
	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			w := sendJSON(t, handler.Register, http.MethodPost, "/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	handler, _ := newAuthHandler()
	signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	w := sendJSON(t, handler.Register, http.MethodPost, "/auth/register", map[string]string{
		"name": "Other Avery", "email": "avery@example.com", "password": "different-pass-4",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestLogin_Succeeds(t *testing.T) {
	handler, _ := newAuthHandler()
	registered := signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	w := sendJSON(t, handler.Login, http.MethodPost, "/auth/login", map[string]string{
		"email": "avery@example.com", "password": "correct-horse-9",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	handler, _ := newAuthHandler()
	signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	// A wrong password and an unknown email must look identical to the caller.
	creds := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "avery@example.com", "not-the-password"},
		{"unknown email", "nobody@example.com", "correct-horse-9"},
	}
	for _, tc := range creds {
		t.Run(tc.name, func(t *testing.T) {
			w := sendJSON(t, handler.Login, http.MethodPost, "/auth/login", map[string]string{
				"email": tc.email, "password": tc.pass,
			})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "invalid email or password")
		})
	}
}

func TestLogin_RejectsBadInput(t *testing.T) {
	handler, _ := newAuthHandler()

	t.Run("malformed body", func(t *testing.T) {
		w := sendJSON(t, handler.Login, http.MethodPost, "/auth/login", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})

	fields := []struct {
		name string
		body map[string]string
	}{
		{"no email", map[string]string{"password": "correct-horse-9"}},
		{"bad email", map[string]string{"email": "not-an-address", "password": "correct-horse-9"}},
		{"no password", map[string]string{"email": "avery@example.com"}},
	}
	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			w := sendJSON(t, handler.Login, http.MethodPost, "/auth/login", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}

func TestUpdatePassword_RotatesCredential(t *testing.T) {
	handler, _ := newAuthHandler()
	registered := signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	asUser := func(w http.ResponseWriter, r *http.Request) {
		handler.UpdatePasswordWithUserID(w, r, registered.User.ID)
	}
	w := sendJSON(t, asUser, http.MethodPut, "/auth/password", map[string]string{
		"current_password": "correct-horse-9", "new_password": "rotated-pass-12",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Password updated successfully")

	// The old password stops working and the new one takes over.
	w = sendJSON(t, handler.Login, http.MethodPost, "/auth/login", map[string]string{
		"email": "avery@example.com", "password": "correct-horse-9",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = sendJSON(t, handler.Login, http.MethodPost, "/auth/login", map[string]string{
		"email": "avery@example.com", "password": "rotated-pass-12",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	handler, _ := newAuthHandler()
	registered := signUp(t, handler, "Avery Chen", "avery@example.com", "correct-horse-9")

	asUser := func(w http.ResponseWriter, r *http.Request) {
		handler.UpdatePasswordWithUserID(w, r, registered.User.ID)
	}
	w := sendJSON(t, asUser, http.MethodPut, "/auth/password", map[string]string{
		"current_password": "not-the-password", "new_password": "rotated-pass-12",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "current password is incorrect")
}

func TestUpdatePassword_UnknownUser(t *testing.T) {
	handler, _ := newAuthHandler()

	asNobody := func(w http.ResponseWriter, r *http.Request) {
		handler.UpdatePasswordWithUserID(w, r, uuid.New())
	}
	w := sendJSON(t, asNobody, http.MethodPut, "/auth/password", map[string]string{
		"current_password": "correct-horse-9", "new_password": "rotated-pass-12",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestUpdatePassword_RejectsBadInput(t *testing.T) {
	handler, _ := newAuthHandler()
	userID := uuid.New()
	asUser := func(w http.ResponseWriter, r *http.Request) {
		handler.UpdatePasswordWithUserID(w, r, userID)
	}

	t.Run("malformed body", func(t *testing.T) {
		w := sendJSON(t, asUser, http.MethodPut, "/auth/password", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid request body")
	})

	fields := []struct {
		name string
		body map[string]string
	}{
		{"no current password", map[string]string{"new_password": "rotated-pass-12"}},
		{"no new password", map[string]string{"current_password": "correct-horse-9"}},
		{"short new password", map[string]string{"current_password": "correct-horse-9", "new_password": "2short"}},
	}
	for _, tc := range fields {
		t.Run(tc.name, func(t *testing.T) {
			w := sendJSON(t, asUser, http.MethodPut, "/auth/password", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "validation error")
		})
	}
}
