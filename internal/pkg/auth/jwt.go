package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Reason classifies why a token was rejected.
type Reason string

const (
	ReasonMissing          Reason = "missing"
	ReasonMalformed        Reason = "malformed"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonExpired          Reason = "expired"
)

// TokenError is returned by Verify and ExtractBearerToken.
type TokenError struct {
	Reason Reason
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token %s: %v", e.Reason, e.Err)
	}
	return "token " + string(e.Reason)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the rejection reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Reason, true
	}
	return "", false
}

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// JWTService issues and verifies access tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// WithClock replaces the service clock. Used by tests to move across the expiry boundary.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Claims defines JWT token content
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID that expires AccessTokenExp from now.
func (s *JWTService) Issue(userID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenExp)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   userID,
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of tokenString and returns its claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, &TokenError{Reason: ReasonMissing}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", jwt.ErrTokenSignatureInvalid, token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, &TokenError{Reason: ReasonExpired, Err: err}
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, &TokenError{Reason: ReasonInvalidSignature, Err: err}
		default:
			return nil, &TokenError{Reason: ReasonMalformed, Err: err}
		}
	}

	if claims.UserID == "" {
		return nil, &TokenError{Reason: ReasonMalformed, Err: errors.New("token has no subject")}
	}
	return claims, nil
}

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>" header value.
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", &TokenError{Reason: ReasonMissing}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", &TokenError{Reason: ReasonMalformed, Err: errors.New("invalid token format")}
	}
	return parts[1], nil
}
