package security

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

func newLegacy(t *testing.T) *LegacyCodec {
	t.Helper()
	c, err := NewLegacyCodec("airbnb")
	require.NoError(t, err)
	return c
}

func TestLegacyCodec_KnownVectors(t *testing.T) {
	c := newLegacy(t)

	assert.Equal(t, "AwYQWB0HAhsXFg==", c.Encode("bob", "secret"))
	assert.Equal(t, "DQxSBRsLD1MCAx0RFgYABhU=", c.Encode("le guin", "password{"))
}

func TestLegacyCodec_RoundTrip(t *testing.T) {
	c := newLegacy(t)

	pairs := []struct{ user, pass string }{
		{"bob", "secret"},
		{"le guin", "password{"},
		{"alice", "has:colons:inside"},
		{"ünïcødé", "pässwörd/()"},
		{"x", ""},
		{"a-much-longer-username-than-the-key", "and-a-longer-password-too-0123456789"},
	}
	for _, p := range pairs {
		got, err := c.Decode(c.Encode(p.user, p.pass))
		require.NoError(t, err, p.user)
		assert.Equal(t, p.user, got.Username)
		assert.Equal(t, p.pass, got.Password.Expose())
	}
}

func TestLegacyCodec_FromHeader(t *testing.T) {
	c := newLegacy(t)

	got, err := c.FromHeader("Cookie " + c.Encode("bob", "secret"))
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)

	got, err = c.FromHeader("Bearer   " + c.Encode("bob", "secret") + "  trailing")
	require.NoError(t, err)
	assert.Equal(t, "secret", got.Password.Expose())
}

func TestLegacyCodec_Malformed(t *testing.T) {
	c := newLegacy(t)

	cases := map[string]string{
		"invalid base64": "not base64!!",
		"std alphabet":   "+/+/",
		"no separator":   "DwYRDQINDw==",
		"not utf8":       base64.URLEncoding.EncodeToString(c.xor([]byte{0xff, ':', 0xfe})),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			var err error
			require.NotPanics(t, func() { _, err = c.Decode(token) })
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}

	for _, header := range []string{"", "Cookie", "   "} {
		_, err := c.FromHeader(header)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "header %q", header)
	}
}

func TestLegacyCodec_EmptyKey(t *testing.T) {
	_, err := NewLegacyCodec("")
	assert.ErrorIs(t, err, ErrEmptyLegacyKey)
}

func TestLegacyCodec_DifferentKeyDoesNotDecodeToSamePair(t *testing.T) {
	a := newLegacy(t)
	b, err := NewLegacyCodec("another-key")
	require.NoError(t, err)

	got, err := b.Decode(a.Encode("bob", "secret"))
	if err == nil {
		assert.NotEqual(t, "bob", got.Username)
	}
}
