package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, carries a bad
	// signature, or was issued by another party.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token's signature verifies but its
	// expiration has passed.
	ErrExpiredToken = errors.New("expired token")
)

// DefaultSessionTTL is the token lifetime used when no TTL is configured.
const DefaultSessionTTL = 15 * 24 * time.Hour

// Claims are the identity claims carried by a session token. They prove who
// the token was issued to at issuance time; the auth guard re-validates them
// against live session state on every request.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
}

// TokenCodec issues and verifies signed session tokens using HS256 with a
// process-wide secret. The secret is read-only after startup; the codec is
// safe for concurrent use.
type TokenCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenCodec returns a TokenCodec signing with secret. issuer is set on
// issued claims and checked on verification. ttl is the default token
// lifetime; DefaultSessionTTL is used when ttl <= 0.
func NewTokenCodec(secret []byte, issuer string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenCodec{secret: secret, issuer: issuer, ttl: ttl}
}

// TTL returns the codec's default token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token carrying the given identity claims with the given
// lifetime. A ttl <= 0 falls back to the codec default. Returns the token
// string and its absolute expiration.
func (c *TokenCodec) Issue(userID, email, role, sessionID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := time.Now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    userID,
		Email:     email,
		Role:      role,
		SessionID: sessionID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify parses the token, checks its signature and expiration, and returns
// the embedded claims. Returns ErrExpiredToken when the token is past its
// expiration and ErrInvalidToken for every other failure. Claims are never
// returned without a verified signature.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.issuer != "" && claims.Issuer != c.issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
