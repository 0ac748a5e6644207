// Package token issues and verifies the signed bearer tokens used by the
// auth routes. Access and refresh tokens share one signing mechanism; the
// "type" claim keeps them from being accepted in each other's place.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind discriminates the two token classes.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the signed payload: registered sub/exp/iat plus the kind.
type Claims struct {
	Type Kind `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies token pairs with a shared HS256 secret.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the codec's clock. Used by tests to pin expiry.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Issue signs a token of the given kind for the subject.
func (c *Codec) Issue(subject uuid.UUID, kind Kind) (string, error) {
	now := c.now()
	claims := Claims{
		Type: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Pair issues an access+refresh token pair for the subject.
func (c *Codec) Pair(subject uuid.UUID) (access, refresh string, err error) {
	if access, err = c.Issue(subject, KindAccess); err != nil {
		return "", "", err
	}
	if refresh, err = c.Issue(subject, KindRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify checks signature, expiry and kind, returning the subject id.
// Any failure collapses into ErrInvalidToken; a token presented at the
// exact expiry instant counts as expired.
func (c *Codec) Verify(tokenString string, kind Kind) (uuid.UUID, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.Type != kind {
		return uuid.Nil, ErrInvalidToken
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return subject, nil
}
