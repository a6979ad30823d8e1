package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = time.Hour

// ErrInvalidToken covers every verification failure: missing, malformed,
// wrong signature, wrong algorithm or expired.
var ErrInvalidToken = errors.New("invalid token")

// Claim is the identity carried by a token: the email exactly as supplied at
// login plus whatever other fields came with it. Email is nil when absent and
// may hold any JSON value.
type Claim struct {
	Email  any
	Fields map[string]any
}

// Identity returns the email when it is a non-empty string. Only such a claim
// can own bookings.
func (c *Claim) Identity() (string, bool) {
	if c == nil {
		return "", false
	}
	s, ok := c.Email.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// registered claim names owned by the issuer; caller fields never override them.
var reserved = map[string]struct{}{
	"email": {},
	"iat":   {},
	"exp":   {},
	"nbf":   {},
}

// NewClaim splits a decoded login body into the email and the remaining fields.
func NewClaim(body map[string]any) Claim {
	c := Claim{Fields: map[string]any{}}
	for k, v := range body {
		if k == "email" {
			c.Email = v
			continue
		}
		if _, ok := reserved[k]; ok {
			continue
		}
		c.Fields[k] = v
	}
	return c
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer reading time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(claim Claim) (string, error) {
	now := i.now()
	mc := jwt.MapClaims{}
	for k, v := range claim.Fields {
		if _, ok := reserved[k]; ok {
			continue
		}
		mc[k] = v
	}
	if claim.Email != nil {
		mc["email"] = claim.Email
	}
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(i.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Verify(tokenString string) (*Claim, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	mc := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(tokenString, mc, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	claim := &Claim{Fields: map[string]any{}}
	for k, v := range mc {
		switch k {
		case "email":
			claim.Email = v
		case "iat", "exp", "nbf":
		default:
			claim.Fields[k] = v
		}
	}
	return claim, nil
}
