package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/construtivo/construtivo-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token fails signature or claim
	// validation
	ErrInvalidToken = errors.New("invalid token")
)

// supabaseClaims are the claims of a Supabase-issued access token
type supabaseClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// JWTValidator validates Supabase access tokens. Supabase signs tokens with
// the project JWT secret using HS256.
type JWTValidator struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTValidator creates a validator from the Supabase configuration
func NewJWTValidator(cfg *config.SupabaseConfig) *JWTValidator {
	issuer := ""
	if cfg.ProjectURL != "" {
		issuer = strings.TrimSuffix(cfg.ProjectURL, "/") + "/auth/v1"
	}
	return &JWTValidator{
		secret:   []byte(cfg.JWTSecret),
		issuer:   issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken parses and validates a token, returning the user it represents
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &supabaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	user := &UserContext{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if name, ok := claims.UserMetadata["full_name"].(string); ok {
		user.DisplayName = name
	}
	return user, nil
}
