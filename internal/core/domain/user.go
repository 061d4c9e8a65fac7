package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Identity is the opaque account reference produced by a successful
// credential verification. It is the subject of every ownership check.
type Identity uuid.UUID

// NilIdentity is the zero Identity. It never authorizes anything.
var NilIdentity Identity

// NewIdentity allocates a fresh random Identity for a new account.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// ParseIdentity parses the canonical UUID text form.
func ParseIdentity(s string) (Identity, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilIdentity, fmt.Errorf("parse identity: %w", err)
	}
	return Identity(id), nil
}

func (i Identity) String() string { return uuid.UUID(i).String() }

func (i Identity) IsZero() bool { return i == NilIdentity }

func (i Identity) MarshalText() ([]byte, error) { return uuid.UUID(i).MarshalText() }

func (i *Identity) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(i).UnmarshalText(b)
}

const redacted = "[REDACTED]"

// Secret holds a sensitive string. Every formatting and encoding path
// prints a placeholder; Expose is the only way to read the value.
type Secret struct {
	value string
}

func NewSecret(s string) Secret { return Secret{value: s} }

func (s Secret) Expose() string { return s.value }

func (s Secret) IsEmpty() bool { return s.value == "" }

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

func (s Secret) Format(f fmt.State, _ rune) { _, _ = f.Write([]byte(redacted)) }

func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Credentials is a username/password pair taken from a Basic header, a
// legacy token or a login form.
type Credentials struct {
	Username string
	Password Secret
}

// MarshalZerologObject logs the username only.
func (c Credentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("username", c.Username)
}

// StoredCredential is what the credential repository knows about an account.
type StoredCredential struct {
	Identity     Identity
	PasswordHash string
}

// Account models a registered user.
type Account struct {
	ID           Identity  `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
