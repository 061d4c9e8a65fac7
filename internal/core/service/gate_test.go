package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/core/security"
	"github.com/lairbnb/lairs-api/internal/infrastructure/queue"
)

func TestGate_Basic_Success(t *testing.T) {
	f := newFixture(t)
	id := f.addAccount(t, "alice", "correct-horse")

	p, err := f.gate.Authenticate(context.Background(), security.BasicHeader("alice", "correct-horse"))
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if p.Identity != id {
		t.Fatalf("expected identity %s, got %s", id, p.Identity)
	}
	if p.Scheme != domain.SchemeBasic || p.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if f.runner.calls != 1 {
		t.Fatalf("expected verification on the runner, got %d calls", f.runner.calls)
	}
}

func TestGate_Basic_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "alice", "correct-horse")

	_, wrong := f.gate.Authenticate(context.Background(), security.BasicHeader("alice", "wrong"))
	before := f.verifier.DummyVerifications()
	_, unknown := f.gate.Authenticate(context.Background(), security.BasicHeader("mallory", "anything"))

	for _, err := range []error{wrong, unknown} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
		var rej *Rejection
		if !errors.As(err, &rej) || rej.Stage != StageVerifying {
			t.Fatalf("expected verifying-stage rejection, got %v", err)
		}
	}
	if f.verifier.DummyVerifications() != before+1 {
		t.Fatalf("unknown user did not exercise the dummy hash")
	}
}

func TestGate_Basic_MalformedHeader(t *testing.T) {
	f := newFixture(t)

	_, err := f.gate.Authenticate(context.Background(), "Basic not-base64!!")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Stage != StageExtracting {
		t.Fatalf("expected extracting-stage rejection, got %v", err)
	}
	if !strings.Contains(err.Error(), "base64") {
		t.Fatalf("expected descriptive decode error, got %v", err)
	}
	if f.repo.lookups != 0 {
		t.Fatalf("repository must not be queried for malformed headers")
	}
}

func TestGate_MissingHeader(t *testing.T) {
	f := newFixture(t)

	_, err := f.gate.Authenticate(context.Background(), "")
	if !errors.Is(err, ErrMissingAuthorization) || !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected missing authorization, got %v", err)
	}

	_, err = f.gate.Authenticate(context.Background(), "Bearer")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for scheme without token, got %v", err)
	}
}

func TestGate_RepositoryFailureIsUnexpected(t *testing.T) {
	f := newFixture(t)
	f.repo.findErr = errBoom

	_, err := f.gate.Authenticate(context.Background(), security.BasicHeader("alice", "x"))
	if !errors.Is(err, domain.ErrUnexpected) || !errors.Is(err, errBoom) {
		t.Fatalf("expected unexpected error wrapping cause, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("operational failure must not look like bad credentials")
	}
}

func TestGate_SaturatedPoolIsUnexpected(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "alice", "correct-horse")
	f.runner.err = queue.ErrPoolSaturated

	_, err := f.gate.Authenticate(context.Background(), security.BasicHeader("alice", "correct-horse"))
	if !errors.Is(err, domain.ErrUnexpected) || !errors.Is(err, queue.ErrPoolSaturated) {
		t.Fatalf("expected unexpected saturation error, got %v", err)
	}
}

func TestGate_SignedToken(t *testing.T) {
	f := newFixture(t)
	id := domain.NewIdentity()
	token, claims, err := f.signed.Encode(id)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p, err := f.gate.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if p.Identity != id || p.Scheme != domain.SchemeBearer || p.TokenID != claims.TokenID {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if !p.Revocable() {
		t.Fatalf("signed principal should be revocable")
	}
	if f.runner.calls != 0 || f.repo.lookups != 0 {
		t.Fatalf("signed tokens must not hit the password path")
	}
}

func TestGate_SignedToken_Revoked(t *testing.T) {
	f := newFixture(t)
	token, claims, err := f.signed.Encode(domain.NewIdentity())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.revoked.revoked[claims.TokenID] = claims.ExpiresAt

	_, err = f.gate.Authenticate(context.Background(), "Bearer "+token)
	if !errors.Is(err, ErrTokenRevoked) || !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected revoked token rejection, got %v", err)
	}
}

func TestGate_SignedToken_RevocationStoreDown(t *testing.T) {
	f := newFixture(t)
	token, _, err := f.signed.Encode(domain.NewIdentity())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.revoked.err = errBoom

	_, err = f.gate.Authenticate(context.Background(), "Bearer "+token)
	if !errors.Is(err, domain.ErrUnexpected) {
		t.Fatalf("expected ErrUnexpected, got %v", err)
	}
}

func TestGate_LegacyToken(t *testing.T) {
	f := newFixture(t)
	f.gate = f.newGate(t, WithLegacyTokens(f.legacy))
	id := f.addAccount(t, "bob", "secret")

	p, err := f.gate.Authenticate(context.Background(), "Cookie "+f.legacy.Encode("bob", "secret"))
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if p.Identity != id || p.Scheme != domain.SchemeLegacy {
		t.Fatalf("unexpected principal: %+v", p)
	}
	if p.Revocable() {
		t.Fatalf("legacy principal cannot be revoked")
	}

	_, err = f.gate.Authenticate(context.Background(), "Cookie "+f.legacy.Encode("bob", "nope"))
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGate_LegacyTokenRejectedWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "bob", "secret")

	_, err := f.gate.Authenticate(context.Background(), "Cookie "+f.legacy.Encode("bob", "secret"))
	if !errors.Is(err, ErrUnsupportedToken) || !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected unsupported token, got %v", err)
	}
}

func TestGate_Authorize(t *testing.T) {
	f := newFixture(t)
	owner := domain.NewIdentity()

	if err := f.gate.Authorize(domain.Principal{Identity: owner}, owner); err != nil {
		t.Fatalf("owner should be authorized: %v", err)
	}

	err := f.gate.Authorize(domain.Principal{Identity: domain.NewIdentity()}, owner)
	if !errors.Is(err, domain.ErrForbidden) || !errors.Is(err, domain.ErrNotOwner) {
		t.Fatalf("expected forbidden/not-owner, got %v", err)
	}

	if err := f.gate.Authorize(domain.Principal{}, domain.NilIdentity); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("zero identity must never be authorized, got %v", err)
	}
}

func TestNewGate_RequiresSignedCodec(t *testing.T) {
	f := newFixture(t)

	if _, err := NewGate(f.repo, f.verifier, f.runner, nil, f.gate.logger); err == nil {
		t.Fatalf("expected error without signed codec")
	}
	if _, err := NewGate(f.repo, nil, f.runner, f.signed, f.gate.logger); err == nil {
		t.Fatalf("expected error without verifier")
	}
}
