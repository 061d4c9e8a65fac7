package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/ports"
	"github.com/lairbnb/lairs-api/internal/core/security"
	"github.com/lairbnb/lairs-api/internal/infrastructure/queue"
	"github.com/lairbnb/lairs-api/internal/metrics"
)

var (
	ErrMissingAuthorization = errors.New("the 'Authorization' header is missing")
	ErrUnsupportedToken     = errors.New("unsupported authorization token")
	ErrTokenRevoked         = errors.New("token has been revoked")
)

// Stage is the step of an authentication attempt at which it was rejected.
type Stage string

const (
	StageExtracting Stage = "extracting"
	StageVerifying  Stage = "verifying"
)

// Rejection is returned by Gate.Authenticate. Err wraps either
// domain.ErrInvalidCredentials or domain.ErrUnexpected.
type Rejection struct {
	Stage  Stage
	Scheme string
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("authentication rejected while %s: %v", r.Stage, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

var _ ports.Authenticator = (*Gate)(nil)

// Gate authenticates requests and performs ownership checks.
type Gate struct {
	creds    ports.CredentialRepository
	verifier *security.Verifier
	runner   ports.BlockingRunner
	signed   *security.SignedCodec
	legacy   *security.LegacyCodec
	revoked  ports.TokenRevocationStore
	logger   zerolog.Logger
}

// GateOption customises a Gate.
type GateOption func(*Gate)

// WithLegacyTokens makes the gate accept tokens produced by c.
func WithLegacyTokens(c *security.LegacyCodec) GateOption {
	return func(g *Gate) { g.legacy = c }
}

// WithRevocationStore makes the gate reject signed tokens revoked in s.
func WithRevocationStore(s ports.TokenRevocationStore) GateOption {
	return func(g *Gate) { g.revoked = s }
}

// NewGate builds a Gate. The credential repository, verifier, runner and
// signed codec are required.
func NewGate(
	creds ports.CredentialRepository,
	verifier *security.Verifier,
	runner ports.BlockingRunner,
	signed *security.SignedCodec,
	logger zerolog.Logger,
	opts ...GateOption,
) (*Gate, error) {
	switch {
	case creds == nil:
		return nil, errors.New("gate: credential repository is required")
	case verifier == nil:
		return nil, errors.New("gate: verifier is required")
	case runner == nil:
		return nil, errors.New("gate: runner is required")
	case signed == nil:
		return nil, errors.New("gate: signed codec is required")
	}

	g := &Gate{
		creds:    creds,
		verifier: verifier,
		runner:   runner,
		signed:   signed,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Authenticate resolves the Authorization header to a Principal. Basic
// credentials and legacy tokens go through password verification; signed
// tokens are checked for signature, expiry and revocation.
func (g *Gate) Authenticate(ctx context.Context, header string) (domain.Principal, error) {
	p, err := g.authenticate(ctx, header)
	if err != nil {
		var rej *Rejection
		scheme := "none"
		if errors.As(err, &rej) && rej.Scheme != "" {
			scheme = rej.Scheme
		}
		if errors.Is(err, domain.ErrUnexpected) {
			metrics.AuthAttemptsTotal.WithLabelValues(scheme, "error").Inc()
			g.logger.Error().Err(err).Str("scheme", scheme).Msg("authentication failed unexpectedly")
		} else {
			metrics.AuthAttemptsTotal.WithLabelValues(scheme, "rejected").Inc()
			g.logger.Debug().Err(err).Str("scheme", scheme).Msg("authentication rejected")
		}
		return domain.Principal{}, err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(p.Scheme, "authorized").Inc()
	return p, nil
}

func (g *Gate) authenticate(ctx context.Context, header string) (domain.Principal, error) {
	if header == "" {
		return domain.Principal{}, &Rejection{Stage: StageExtracting, Err: domain.InvalidCredentials(ErrMissingAuthorization)}
	}

	if strings.HasPrefix(header, "Basic ") {
		creds, err := security.ExtractBasic(header)
		if err != nil {
			return domain.Principal{}, &Rejection{Stage: StageExtracting, Scheme: domain.SchemeBasic, Err: err}
		}
		return g.principalFromCredentials(ctx, creds, domain.SchemeBasic)
	}

	token, err := security.TokenField(header)
	if err != nil {
		return domain.Principal{}, &Rejection{Stage: StageExtracting, Err: err}
	}

	if security.LooksSigned(token) {
		return g.principalFromSigned(ctx, token)
	}

	if g.legacy == nil {
		return domain.Principal{}, &Rejection{Stage: StageExtracting, Err: domain.InvalidCredentials(ErrUnsupportedToken)}
	}
	creds, err := g.legacy.Decode(token)
	if err != nil {
		return domain.Principal{}, &Rejection{Stage: StageExtracting, Scheme: domain.SchemeLegacy, Err: err}
	}
	return g.principalFromCredentials(ctx, creds, domain.SchemeLegacy)
}

func (g *Gate) principalFromCredentials(ctx context.Context, creds domain.Credentials, scheme string) (domain.Principal, error) {
	id, err := g.VerifyCredentials(ctx, creds)
	if err != nil {
		return domain.Principal{}, &Rejection{Stage: StageVerifying, Scheme: scheme, Err: err}
	}
	return domain.Principal{Identity: id, Scheme: scheme, Username: creds.Username}, nil
}

func (g *Gate) principalFromSigned(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := g.signed.Decode(token)
	if err != nil {
		return domain.Principal{}, &Rejection{Stage: StageVerifying, Scheme: domain.SchemeBearer, Err: err}
	}

	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			return domain.Principal{}, &Rejection{
				Stage:  StageVerifying,
				Scheme: domain.SchemeBearer,
				Err:    domain.Unexpected(fmt.Errorf("check token revocation: %w", err)),
			}
		}
		if revoked {
			return domain.Principal{}, &Rejection{Stage: StageVerifying, Scheme: domain.SchemeBearer, Err: domain.InvalidCredentials(ErrTokenRevoked)}
		}
	}

	return domain.Principal{
		Identity:  claims.Identity,
		Scheme:    domain.SchemeBearer,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// VerifyCredentials looks up the stored hash for creds.Username and checks
// the password on the blocking runner. Unknown usernames cost the same as a
// wrong password.
func (g *Gate) VerifyCredentials(ctx context.Context, creds domain.Credentials) (domain.Identity, error) {
	stored, err := g.creds.FindCredential(ctx, creds.Username)
	if err != nil {
		return domain.NilIdentity, domain.Unexpected(fmt.Errorf("find credential: %w", err))
	}

	id, err := queue.Submit(ctx, g.runner, func() (domain.Identity, error) {
		return g.verifier.Verify(creds, stored)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUnexpected) {
			return domain.NilIdentity, err
		}
		return domain.NilIdentity, domain.Unexpected(fmt.Errorf("verify password: %w", err))
	}
	return id, nil
}

// Authorize allows principal to mutate a resource owned by owner.
func (g *Gate) Authorize(principal domain.Principal, owner domain.Identity) error {
	if principal.Identity.IsZero() || principal.Identity != owner {
		return fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrNotOwner)
	}
	return nil
}
