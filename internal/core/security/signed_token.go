package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// MinSecretLength is the shortest HMAC key SignedCodec accepts.
const MinSecretLength = 32

var (
	ErrShortSecret  = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the identity-bearing contents of a signed token.
type Claims struct {
	Identity  domain.Identity
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
}

// SignedCodec issues and checks HS256 tokens carrying {sub, iat, exp, jti}.
type SignedCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSignedCodec(secret []byte, ttl time.Duration) (*SignedCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrShortSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedCodec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Encode mints a token for id.
func (c *SignedCodec) Encode(id domain.Identity) (string, Claims, error) {
	now := c.now().UTC().Truncate(time.Second)
	claims := Claims{
		Identity:  id,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// Decode verifies the signature and expiry. Every failure wraps
// domain.ErrInvalidCredentials.
func (c *SignedCodec) Decode(token string) (Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, domain.InvalidCredentials(ErrTokenExpired)
		}
		return Claims{}, domain.InvalidCredentials(fmt.Errorf("parse token: %w", err))
	}

	id, err := domain.ParseIdentity(tc.Subject)
	if err != nil || id.IsZero() {
		return Claims{}, domain.InvalidCredentials(errors.New("token subject is not an identity"))
	}
	if tc.ID == "" {
		return Claims{}, domain.InvalidCredentials(errors.New("token has no id"))
	}

	claims := Claims{
		Identity:  id,
		TokenID:   tc.ID,
		ExpiresAt: tc.ExpiresAt.Time,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	return claims, nil
}

// LooksSigned reports whether token has the three-segment JWT shape.
// Padded URL-safe base64 never contains '.', so legacy tokens never match.
func LooksSigned(token string) bool {
	return strings.Count(token, ".") == 2
}
