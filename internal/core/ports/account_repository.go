package ports

import (
	"context"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// CredentialRepository looks up the stored password hash for a username.
// A nil credential with a nil error means the username is unknown.
type CredentialRepository interface {
	FindCredential(ctx context.Context, username string) (*domain.StoredCredential, error)
}

// AccountRepository defines persistence for registered accounts.
type AccountRepository interface {
	CredentialRepository
	// Create stores a new account. It returns domain.ErrUserExists when the
	// username is already taken.
	Create(ctx context.Context, account *domain.Account) error
}
