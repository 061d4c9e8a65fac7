// Package metrics defines and registers all custom Prometheus metrics for the
// lairs API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation (promauto) and exposed by the router on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lairs"

// ── Authentication metrics ────────────────────────────────────────────────────

// AuthAttemptsTotal counts authorization gate decisions.
// Labels:
//   - scheme: "basic", "bearer", "legacy" or "none" when no scheme was recognised
//   - outcome: "authorized", "rejected" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication decisions, by scheme and outcome.",
	},
	[]string{"scheme", "outcome"},
)

// PasswordVerifyDuration measures a single password hash verification.
// Label:
//   - result: "match", "mismatch", "unknown_user" or "malformed"
var PasswordVerifyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_verify_duration_seconds",
		Help:      "Duration of password hash verification.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"result"},
)

// DummyVerificationsTotal counts verifications run against the dummy hash
// because the username was unknown.
var DummyVerificationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dummy_verifications_total",
		Help:      "Total number of password verifications run against the dummy hash.",
	},
)

// ── Hashing pool metrics ──────────────────────────────────────────────────────

// HashQueueDepth tracks the number of jobs waiting for a hashing worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of jobs pending in the hashing worker pool.",
	},
)

// HashJobsRejectedTotal counts jobs refused by the pool.
// Label:
//   - reason: "saturated" or "closed"
var HashJobsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hash_jobs_rejected_total",
		Help:      "Total number of hashing jobs rejected by the worker pool.",
	},
	[]string{"reason"},
)

// ── Lair metrics ──────────────────────────────────────────────────────────────

// LairsCreatedTotal counts newly published lairs.
var LairsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lairs_created_total",
		Help:      "Total number of lairs created.",
	},
)

// LairDeletesTotal counts delete attempts.
// Label:
//   - result: "deleted", "forbidden" or "error"
var LairDeletesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lair_deletes_total",
		Help:      "Total number of lair delete attempts, by result.",
	},
	[]string{"result"},
)
