package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

var ErrEmptyLegacyKey = errors.New("legacy token key must not be empty")

// LegacyCodec reproduces the original cookie format: "username:password"
// XORed with a repeating key and encoded with padded URL-safe base64.
//
// The format has no integrity tag and the repeating-key XOR is recoverable
// from a single known plaintext. Tokens decoded here are only a source of
// credentials; they are re-verified against the stored hash on every request.
type LegacyCodec struct {
	key []byte
}

func NewLegacyCodec(key string) (*LegacyCodec, error) {
	if key == "" {
		return nil, ErrEmptyLegacyKey
	}
	return &LegacyCodec{key: []byte(key)}, nil
}

// Encode returns the token for the given pair.
func (c *LegacyCodec) Encode(username, password string) string {
	return base64.URLEncoding.EncodeToString(c.xor([]byte(username + ":" + password)))
}

// Decode reverses Encode. The pair is split on the first colon, so
// passwords containing colons survive a round trip.
func (c *LegacyCodec) Decode(token string) (domain.Credentials, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return domain.Credentials{}, domain.InvalidCredentials(fmt.Errorf("failed to base64-decode token: %w", err))
	}
	plain := c.xor(raw)
	if !utf8.Valid(plain) {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("decoded token is not valid UTF-8"))
	}
	username, password, found := strings.Cut(string(plain), ":")
	if !found {
		return domain.Credentials{}, domain.InvalidCredentials(errors.New("decoded token has no separator"))
	}
	return domain.Credentials{Username: username, Password: domain.NewSecret(password)}, nil
}

// FromHeader decodes the second whitespace-delimited field of an
// Authorization header value ("<scheme> <token>").
func (c *LegacyCodec) FromHeader(header string) (domain.Credentials, error) {
	token, err := TokenField(header)
	if err != nil {
		return domain.Credentials{}, err
	}
	return c.Decode(token)
}

func (c *LegacyCodec) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.key[i%len(c.key)]
	}
	return out
}

// TokenField returns the token part of "<scheme> <token>".
func TokenField(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", domain.InvalidCredentials(errors.New("the 'Authorization' header has no token field"))
	}
	return fields[1], nil
}
