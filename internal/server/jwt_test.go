package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/config"
)

const jwtTestSecret = "unit-test-signing-secret-0123456789abcdef"

func newJWTService(hours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          jwtTestSecret,
		ExpirationHours: hours,
	})
}

// signClaims signs claims with HS256 outside the service, for crafting
// tokens the service itself would refuse to issue.
func signClaims(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTService_RoundTrip(t *testing.T) {
	service := newJWTService(24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Len(t, strings.Split(token, "."), 3, "compact JWT has three dot-separated segments")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID, claims.GetUserID())
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(23*time.Hour)), "expiry should honor the configured hours")
}

func TestJWTService_RejectsOtherSecret(t *testing.T) {
	service := newJWTService(24)

	foreign := signClaims(t, "some-other-service-secret-0123456789abcd", &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	claims, err := service.ValidateToken(foreign)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	service := newJWTService(24)

	for _, token := range []string{
		"",
		"x",
		"a.b",
		"a.b.c.d",
		"!!!.@@@.###",
	} {
		claims, err := service.ValidateToken(token)
		assert.Error(t, err, "token %q", token)
		assert.Nil(t, claims, "token %q", token)
	}
}

func TestJWTService_RejectsExpired(t *testing.T) {
	service := newJWTService(24)
	issued := time.Now().Add(-2 * time.Hour)

	stale := signClaims(t, jwtTestSecret, &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
		},
	})

	claims, err := service.ValidateToken(stale)
	assert.Nil(t, claims)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestJWTService_RejectsUnsignedAlgorithm(t *testing.T) {
	service := newJWTService(24)

	// alg=none must never pass, whatever the claims say.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: uuid.New()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateToken(unsigned)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := newJWTService(24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)

	validator := service.AsTokenValidator()

	getter, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, getter.GetUserID())

	_, err = validator.ValidateToken("not.a.token")
	assert.Error(t, err)
}
