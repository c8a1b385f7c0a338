// Package token encodes and decodes the signed claim sets carried by
// bearer tokens. The codec is generic over token kind: kind checking is
// the caller's responsibility.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates what a token may be used for. A token of one kind
// must never be accepted where another kind is expected.
type Kind string

const (
	KindAccess        Kind = "access"
	KindRefresh       Kind = "refresh"
	KindPasswordReset Kind = "password_reset"
)

// Decode failure variants.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
)

// Claims is the claim set embedded in every issued token.
type Claims struct {
	CompanyID string `json:"company_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Kind      Kind   `json:"kind"`
	jwt.RegisteredClaims
}

// Codec signs and verifies claim sets with a process-wide symmetric key.
// Safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
}

// NewCodec returns a Codec signing with the given secret.
func NewCodec(secret, issuer string) *Codec {
	return &Codec{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token of the given kind expiring after ttl.
func (c *Codec) Issue(userID, companyID string, role string, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		CompanyID: companyID,
		Role:      role,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the claims.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	return c.parse(tokenString)
}

// Peek decodes a token verifying its signature but NOT its expiry. It
// exists solely for the tenant-context middleware's advisory extraction;
// the authoritative expiry check happens in the principal resolver.
// Never use the result of Peek to authorize anything.
func (c *Codec) Peek(tokenString string) (*Claims, error) {
	return c.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (c *Codec) parse(tokenString string, opts ...jwt.ParserOption) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}
