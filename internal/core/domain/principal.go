package domain

import "time"

// Authentication schemes a Principal can come from.
const (
	SchemeBasic  = "basic"
	SchemeBearer = "bearer"
	SchemeLegacy = "legacy"
)

// Principal is the authenticated caller of a request. TokenID and ExpiresAt
// are only set for signed bearer tokens.
type Principal struct {
	Identity  Identity
	Scheme    string
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Revocable reports whether the principal was authenticated with a token
// that can be revoked on logout.
func (p Principal) Revocable() bool {
	return p.TokenID != "" && !p.ExpiresAt.IsZero()
}
