package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/security"
)

var fastParams = security.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	findErr  error
	lookups  int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[a.Username]; exists {
		return domain.ErrUserExists
	}
	clone := *a
	r.accounts[a.Username] = &clone
	return nil
}

func (r *stubAccountRepo) FindCredential(_ context.Context, username string) (*domain.StoredCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.accounts[username]
	if !ok {
		return nil, nil
	}
	return &domain.StoredCredential{Identity: a.ID, PasswordHash: a.PasswordHash}, nil
}

// inlineRunner runs work on the calling goroutine, or fails with err.
type inlineRunner struct {
	err   error
	calls int
}

func (r *inlineRunner) Run(_ context.Context, fn func()) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	fn()
	return nil
}

type stubRevocationStore struct {
	revoked map[string]time.Time
	err     error
}

func newStubRevocationStore() *stubRevocationStore {
	return &stubRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *stubRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.revoked[tokenID] = until
	return nil
}

func (s *stubRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[tokenID]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type fixture struct {
	repo     *stubAccountRepo
	runner   *inlineRunner
	revoked  *stubRevocationStore
	hasher   *security.Hasher
	verifier *security.Verifier
	signed   *security.SignedCodec
	legacy   *security.LegacyCodec
	gate     *Gate
}

func newFixture(t *testing.T, opts ...GateOption) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newStubAccountRepo(),
		runner:  &inlineRunner{},
		revoked: newStubRevocationStore(),
		hasher:  security.NewHasher(fastParams),
	}

	var err error
	f.verifier, err = security.NewVerifier(f.hasher, zerolog.Nop())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	f.signed, err = security.NewSignedCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("new signed codec: %v", err)
	}
	f.legacy, err = security.NewLegacyCodec("airbnb")
	if err != nil {
		t.Fatalf("new legacy codec: %v", err)
	}

	f.gate = f.newGate(t, append([]GateOption{WithRevocationStore(f.revoked)}, opts...)...)
	return f
}

func (f *fixture) newGate(t *testing.T, opts ...GateOption) *Gate {
	t.Helper()
	g, err := NewGate(f.repo, f.verifier, f.runner, f.signed, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	return g
}

// addAccount stores an account whose password is hashed with the fixture hasher.
func (f *fixture) addAccount(t *testing.T, username, password string) domain.Identity {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id := domain.NewIdentity()
	if err := f.repo.Create(context.Background(), &domain.Account{ID: id, Username: username, PasswordHash: hash}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	return id
}

func (f *fixture) authService(t *testing.T, format TokenFormat) *AuthService {
	t.Helper()
	svc, err := NewAuthService(AuthServiceConfig{
		Repo:    f.repo,
		Gate:    f.gate,
		Hasher:  f.hasher,
		Runner:  f.runner,
		Signed:  f.signed,
		Legacy:  f.legacy,
		Format:  format,
		Revoked: f.revoked,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

var errBoom = errors.New("boom")
