package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("token expired")

// Claims is the payload of a session token.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// VerificationClaims carries a pending email verification. CodeExpiresAt is
// the business deadline for the code and is checked separately from the
// token's own exp claim.
type VerificationClaims struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
	CodeExpiresAt    int64  `json:"expiresAt"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates HS256 tokens with one secret.
type TokenManager struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(secret string, sessionTTL time.Duration, now func() time.Time) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not configured")
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session expiry must be positive, got %s", sessionTTL)
	}
	if now == nil {
		now = time.Now
	}
	return &TokenManager{secret: []byte(secret), sessionTTL: sessionTTL, now: now}, nil
}

// SessionTTL is how long issued session tokens stay valid.
func (m *TokenManager) SessionTTL() time.Duration { return m.sessionTTL }

func (m *TokenManager) registered(ttl time.Duration) jwt.RegisteredClaims {
	issuedAt := m.now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// IssueSession creates a session token for a given user and role.
func (m *TokenManager) IssueSession(userID, role string) (string, error) {
	return m.sign(&Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: m.registered(m.sessionTTL),
	})
}

// ParseSession validates a session token string.
func (m *TokenManager) ParseSession(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}

// IssueVerification embeds an email verification code in a token valid for ttl.
func (m *TokenManager) IssueVerification(email, code string, codeExpiresAt time.Time, ttl time.Duration) (string, error) {
	return m.sign(&VerificationClaims{
		Email:            email,
		VerificationCode: code,
		CodeExpiresAt:    codeExpiresAt.UnixMilli(),
		RegisteredClaims: m.registered(ttl),
	})
}

func (m *TokenManager) ParseVerification(tokenStr string) (*VerificationClaims, error) {
	claims := &VerificationClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" || claims.VerificationCode == "" {
		return nil, errors.New("token is missing verification claims")
	}
	return claims, nil
}
