package security

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lairbnb/lairs-api/internal/core/domain"
	"github.com/lairbnb/lairs-api/internal/metrics"
)

// Verifier checks candidate passwords against stored hashes. Unknown users
// are verified against a dummy hash built with the same parameters as real
// hashes, so both failure paths cost the same and return the same error.
type Verifier struct {
	dummyHash string
	dummyRuns atomic.Int64
	log       zerolog.Logger
}

// NewVerifier pre-computes the dummy hash with h. The dummy password is
// random and discarded, so nothing can ever match it.
func NewVerifier(h *Hasher, log zerolog.Logger) (*Verifier, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	dummy, err := h.Hash(base64.RawStdEncoding.EncodeToString(buf))
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &Verifier{dummyHash: dummy, log: log}, nil
}

// Verify returns the stored Identity when candidate matches stored.
// A nil stored credential still costs one full verification.
func (v *Verifier) Verify(candidate domain.Credentials, stored *domain.StoredCredential) (domain.Identity, error) {
	start := time.Now()

	hash := v.dummyHash
	if stored != nil {
		hash = stored.PasswordHash
	}
	err := ComparePassword(hash, candidate.Password.Expose())

	if stored == nil {
		v.dummyRuns.Add(1)
		metrics.DummyVerificationsTotal.Inc()
		metrics.PasswordVerifyDuration.WithLabelValues("unknown_user").Observe(time.Since(start).Seconds())
		return domain.NilIdentity, domain.InvalidCredentials(errors.New("unknown username"))
	}

	switch {
	case err == nil:
		metrics.PasswordVerifyDuration.WithLabelValues("match").Observe(time.Since(start).Seconds())
		return stored.Identity, nil
	case errors.Is(err, ErrPasswordMismatch):
		metrics.PasswordVerifyDuration.WithLabelValues("mismatch").Observe(time.Since(start).Seconds())
		return domain.NilIdentity, domain.InvalidCredentials(errors.New("invalid password"))
	default:
		metrics.PasswordVerifyDuration.WithLabelValues("malformed").Observe(time.Since(start).Seconds())
		v.log.Error().Err(err).Str("identity", stored.Identity.String()).Msg("stored password hash is unusable")
		return domain.NilIdentity, domain.Unexpected(err)
	}
}

// DummyVerifications reports how many times the dummy hash was exercised.
func (v *Verifier) DummyVerifications() int64 {
	return v.dummyRuns.Load()
}
