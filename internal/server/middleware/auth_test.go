package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator is a TokenValidator backed by a fixed token table.
type stubValidator struct {
	tokens map[string]uuid.UUID
}

func newStubValidator() *stubValidator {
	return &stubValidator{tokens: make(map[string]uuid.UUID)}
}

func (v *stubValidator) addToken(token string, userID uuid.UUID) {
	v.tokens[token] = userID
}

func (v *stubValidator) ValidateToken(tokenString string) (UserIDGetter, error) {
	userID, ok := v.tokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return &stubClaims{userID: userID}, nil
}

type stubClaims struct {
	userID uuid.UUID
}

func (c *stubClaims) GetUserID() uuid.UUID {
	return c.userID
}

// runAuth sends one request with the given Authorization header through the
// middleware and reports the recorder, whether the inner handler ran, and the
// user ID the handler saw on its context.
func runAuth(t *testing.T, v TokenValidator, header string) (rec *httptest.ResponseRecorder, called bool, userID uuid.UUID) {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if id, err := GetUserID(r); err == nil {
			userID = id
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec = httptest.NewRecorder()
	AuthMiddleware(v)(inner).ServeHTTP(rec, req)
	return rec, called, userID
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := newStubValidator()
	want := uuid.New()
	v.addToken("tok-7f3a", want)

	rec, called, got := runAuth(t, v, "Bearer tok-7f3a")

	assert.True(t, called, "inner handler should run")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)
}

func TestAuthMiddleware_SchemeCaseInsensitive(t *testing.T) {
	v := newStubValidator()
	v.addToken("tok-7f3a", uuid.New())

	for _, scheme := range []string{"bearer", "BEARER", "BeArEr"} {
		rec, called, _ := runAuth(t, v, scheme+" tok-7f3a")
		assert.True(t, called, scheme)
		assert.Equal(t, http.StatusOK, rec.Code, scheme)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	v := newStubValidator()
	v.addToken("tok-7f3a", uuid.New())

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"scheme missing", "tok-7f3a"},
		{"scheme alone", "Bearer"},
		{"empty token", "Bearer "},
		{"extra field", "Bearer tok-7f3a extra"},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"unknown token", "Bearer tok-other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, called, _ := runAuth(t, v, tt.header)

			assert.False(t, called, "inner handler must not run")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}

func TestGetUserID(t *testing.T) {
	withValue := func(v any) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
		return req.WithContext(context.WithValue(req.Context(), userIDKey, v))
	}

	t.Run("present", func(t *testing.T) {
		want := uuid.New()
		got, err := GetUserID(withValue(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("absent", func(t *testing.T) {
		got, err := GetUserID(httptest.NewRequest(http.MethodGet, "/campaigns", nil))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "user ID not found")
		assert.Equal(t, uuid.Nil, got)
	})

	t.Run("wrong type", func(t *testing.T) {
		got, err := GetUserID(withValue("not-a-uuid"))
		assert.Error(t, err)
		assert.Equal(t, uuid.Nil, got)
	})
}
