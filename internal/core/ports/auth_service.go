package ports

import (
	"context"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password domain.Secret
}

// AuthService handles account registration and session tokens.
type AuthService interface {
	// Register creates an account and returns a token for it.
	Register(ctx context.Context, input RegisterInput) (string, *domain.Account, error)
	// Login verifies credentials and returns a fresh token.
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	// Logout revokes the token the principal authenticated with, if any.
	Logout(ctx context.Context, principal domain.Principal) error
}

// Authenticator turns an Authorization header into a Principal and checks
// ownership of resources.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (domain.Principal, error)
	Authorize(principal domain.Principal, owner domain.Identity) error
}
