package ports

import (
	"context"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// CreateLairInput carries a validated lair publication request.
type CreateLairInput struct {
	Title       string
	Description string
	Image       string
	Location    domain.Coordinates
}

// LairService defines the use cases for published lairs.
type LairService interface {
	Create(ctx context.Context, principal domain.Principal, input CreateLairInput) (*domain.Lair, error)
	Get(ctx context.Context, id domain.Identity) (*domain.Lair, error)
	// Delete removes a lair owned by principal. Both a foreign lair and a
	// missing one yield an error wrapping domain.ErrForbidden.
	Delete(ctx context.Context, principal domain.Principal, id domain.Identity) error
}
