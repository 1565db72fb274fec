package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultEmailTTL   = 7 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the fixed claim set carried by every token the service signs.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies all tokens with a single shared HS256 secret.
type Manager struct {
	secret []byte
}

func NewManager(secret []byte) *Manager {
	return &Manager{secret: secret}
}

func (m *Manager) sign(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// CreateAccessToken issues an access token. A non-positive ttl falls back to
// the 15 minute default.
func (m *Manager) CreateAccessToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	return m.sign(subject, ScopeAccess, ttl)
}

// CreateRefreshToken issues a refresh token. A non-positive ttl falls back to
// the 7 day default.
func (m *Manager) CreateRefreshToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return m.sign(subject, ScopeRefresh, ttl)
}

// CreateEmailToken issues an email-verification token. It carries no scope,
// only the subject.
func (m *Manager) CreateEmailToken(subject string) (string, error) {
	return m.sign(subject, "", DefaultEmailTTL)
}

func (m *Manager) parse(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected sign method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// DecodeAccessToken verifies an access token and returns its subject.
func (m *Manager) DecodeAccessToken(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeAccess || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// DecodeRefreshToken verifies a refresh token and returns its subject.
func (m *Manager) DecodeRefreshToken(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeRefresh {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// DecodeEmailToken verifies an email-verification token and returns its
// subject. Scope is not checked, only signature and expiry.
func (m *Manager) DecodeEmailToken(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
