package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
	"github.com/lairbnb/lairs-api/internal/metrics"
)

type LairService struct {
	repo   ports.LairRepository
	authz  ports.Authenticator
	logger zerolog.Logger
}

func NewLairService(repo ports.LairRepository, authz ports.Authenticator, logger zerolog.Logger) *LairService {
	return &LairService{repo: repo, authz: authz, logger: logger}
}

// Create publishes a lair owned by principal.
func (s *LairService) Create(ctx context.Context, principal domain.Principal, input ports.CreateLairInput) (*domain.Lair, error) {
	if principal.Identity.IsZero() {
		return nil, domain.InvalidCredentials(nil)
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrInvalidLair)
	}
	if !input.Location.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", domain.ErrInvalidLair)
	}

	lair := &domain.Lair{
		ID:          domain.NewIdentity(),
		OwnerID:     principal.Identity,
		Title:       input.Title,
		Description: input.Description,
		Image:       input.Image,
		Location:    input.Location,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, lair); err != nil {
		return nil, fmt.Errorf("create lair: %w", err)
	}

	metrics.LairsCreatedTotal.Inc()
	s.logger.Info().Str("lair_id", lair.ID.String()).Str("owner", lair.OwnerID.String()).Msg("lair created")
	return lair, nil
}

func (s *LairService) Get(ctx context.Context, id domain.Identity) (*domain.Lair, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes a lair owned by principal. The store delete is scoped by
// owner as well, so a lair that changes hands concurrently is never removed.
func (s *LairService) Delete(ctx context.Context, principal domain.Principal, id domain.Identity) error {
	lair, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrLairNotFound) {
			metrics.LairDeletesTotal.WithLabelValues("forbidden").Inc()
			return fmt.Errorf("%w: %w", domain.ErrForbidden, err)
		}
		metrics.LairDeletesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("find lair: %w", err)
	}

	if err := s.authz.Authorize(principal, lair.OwnerID); err != nil {
		metrics.LairDeletesTotal.WithLabelValues("forbidden").Inc()
		s.logger.Warn().
			Str("lair_id", id.String()).
			Str("identity", principal.Identity.String()).
			Msg("delete attempted by non-owner")
		return err
	}

	deleted, err := s.repo.DeleteOwned(ctx, id, principal.Identity)
	if err != nil {
		metrics.LairDeletesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("delete lair: %w", err)
	}
	if !deleted {
		metrics.LairDeletesTotal.WithLabelValues("forbidden").Inc()
		return fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrLairNotFound)
	}

	metrics.LairDeletesTotal.WithLabelValues("deleted").Inc()
	s.logger.Info().Str("lair_id", id.String()).Msg("lair deleted")
	return nil
}
