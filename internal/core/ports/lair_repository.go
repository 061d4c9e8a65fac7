package ports

import (
	"context"

	"github.com/lairbnb/lairs-api/internal/core/domain"
)

// LairRepository defines persistence operations for lairs.
type LairRepository interface {
	Create(ctx context.Context, lair *domain.Lair) error
	// FindByID returns domain.ErrLairNotFound when no lair has the given id.
	FindByID(ctx context.Context, id domain.Identity) (*domain.Lair, error)
	// DeleteOwned removes the lair only if it belongs to owner and reports
	// whether a document was removed.
	DeleteOwned(ctx context.Context, id, owner domain.Identity) (bool, error)
}
