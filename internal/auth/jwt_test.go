package auth

import (
	"testing"
	"time"

	"github.com/construtivo/construtivo-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func testValidator() *JWTValidator {
	return NewJWTValidator(&config.SupabaseConfig{
		ProjectURL: "https://example.supabase.co",
		JWTSecret:  testSecret,
		Audience:   "authenticated",
	})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-123",
		"email": "engenheiro@construtora.com.br",
		"role":  "authenticated",
		"aud":   "authenticated",
		"iss":   "https://example.supabase.co/auth/v1",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Carlos Pereira",
		},
	}
}

func TestValidateToken(t *testing.T) {
	v := testValidator()

	user, err := v.ValidateToken(signToken(t, testSecret, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", user.UserID)
	assert.Equal(t, "engenheiro@construtora.com.br", user.Email)
	assert.Equal(t, "Carlos Pereira", user.DisplayName)
	assert.Equal(t, "Carlos Pereira", user.Nome())
}

func TestValidateTokenWrongSecret(t *testing.T) {
	v := testValidator()

	_, err := v.ValidateToken(signToken(t, "another-secret-that-is-not-the-right-one", validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	v := testValidator()

	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	v := testValidator()

	claims := validClaims()
	claims["aud"] = "anon"

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	v := testValidator()

	claims := validClaims()
	claims["iss"] = "https://other-project.supabase.co/auth/v1"

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	v := testValidator()

	claims := validClaims()
	delete(claims, "sub")

	_, err := v.ValidateToken(signToken(t, testSecret, claims))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNomeFallsBackToEmail(t *testing.T) {
	user := &UserContext{Email: "mestre@construtora.com.br"}
	assert.Equal(t, "mestre@construtora.com.br", user.Nome())
}
