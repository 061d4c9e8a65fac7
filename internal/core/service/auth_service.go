package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
	"github.com/lairbnb/lairs-api/internal/core/security"
	"github.com/lairbnb/lairs-api/internal/infrastructure/queue"
)

// TokenFormat selects which codec mints session tokens.
type TokenFormat string

const (
	TokenFormatSigned TokenFormat = "signed"
	TokenFormatLegacy TokenFormat = "legacy"
)

// AuthService implements registration, login and logout.
type AuthService struct {
	repo    ports.AccountRepository
	gate    *Gate
	hasher  *security.Hasher
	runner  ports.BlockingRunner
	signed  *security.SignedCodec
	legacy  *security.LegacyCodec
	format  TokenFormat
	revoked ports.TokenRevocationStore
	logger  zerolog.Logger
}

// AuthServiceConfig groups the collaborators of an AuthService.
// Legacy is required when Format is TokenFormatLegacy; Revoked may be nil.
type AuthServiceConfig struct {
	Repo    ports.AccountRepository
	Gate    *Gate
	Hasher  *security.Hasher
	Runner  ports.BlockingRunner
	Signed  *security.SignedCodec
	Legacy  *security.LegacyCodec
	Format  TokenFormat
	Revoked ports.TokenRevocationStore
	Logger  zerolog.Logger
}

func NewAuthService(cfg AuthServiceConfig) (*AuthService, error) {
	format := cfg.Format
	if format == "" {
		format = TokenFormatSigned
	}
	switch format {
	case TokenFormatSigned:
		if cfg.Signed == nil {
			return nil, errors.New("auth service: signed codec is required")
		}
	case TokenFormatLegacy:
		if cfg.Legacy == nil {
			return nil, errors.New("auth service: legacy codec is required for legacy tokens")
		}
	default:
		return nil, fmt.Errorf("auth service: unknown token format %q", format)
	}

	return &AuthService{
		repo:    cfg.Repo,
		gate:    cfg.Gate,
		hasher:  cfg.Hasher,
		runner:  cfg.Runner,
		signed:  cfg.Signed,
		legacy:  cfg.Legacy,
		format:  format,
		revoked: cfg.Revoked,
		logger:  cfg.Logger,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (string, *domain.Account, error) {
	if input.Username == "" || input.Password.IsEmpty() {
		return "", nil, domain.InvalidCredentials(errors.New("username and password are required"))
	}

	hash, err := queue.Submit(ctx, s.runner, func() (string, error) {
		return s.hasher.Hash(input.Password.Expose())
	})
	if err != nil {
		return "", nil, domain.Unexpected(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           domain.NewIdentity(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("create account: %w", err)
	}

	creds := domain.Credentials{Username: input.Username, Password: input.Password}
	token, err := s.issue(account.ID, creds)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info().Str("identity", account.ID.String()).Str("username", account.Username).Msg("account registered")
	return token, account, nil
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	id, err := s.gate.VerifyCredentials(ctx, creds)
	if err != nil {
		return "", err
	}
	return s.issue(id, creds)
}

func (s *AuthService) Logout(ctx context.Context, principal domain.Principal) error {
	if !principal.Revocable() || s.revoked == nil {
		s.logger.Debug().Str("scheme", principal.Scheme).Msg("logout without revocable token")
		return nil
	}
	if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) issue(id domain.Identity, creds domain.Credentials) (string, error) {
	if s.format == TokenFormatLegacy {
		return s.legacy.Encode(creds.Username, creds.Password.Expose()), nil
	}
	token, _, err := s.signed.Encode(id)
	if err != nil {
		return "", domain.Unexpected(fmt.Errorf("issue token: %w", err))
	}
	return token, nil
}
