// Package metrics exposes Prometheus counters for the scoring engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Private registry so the /metrics endpoint carries only engine metrics,
// not the default Go runtime collectors.
var registry = prometheus.NewRegistry()

var (
	// EntriesSubmitted counts accepted ball entries.
	EntriesSubmitted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "ball_entries_submitted_total",
		Help:      "Ball entries accepted and persisted.",
	})

	// EntriesRejected counts rejected submissions by error code.
	EntriesRejected = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "ball_entries_rejected_total",
		Help:      "Ball entry submissions rejected, by error code.",
	}, []string{"code"})

	// ConsensusVerdicts counts consensus evaluations by verdict.
	ConsensusVerdicts = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "consensus_verdicts_total",
		Help:      "Consensus evaluations, by verdict (pending, verified, disputed).",
	}, []string{"verdict"})

	// DisputesResolved counts manual resolutions by an umpire or referee.
	DisputesResolved = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "disputes_resolved_total",
		Help:      "Disputes settled by an umpire or referee.",
	})

	// OfficialBallsWritten counts canonical ball records materialized.
	OfficialBallsWritten = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "official_balls_written_total",
		Help:      "Official ball records created.",
	})

	// HTTPRequests counts handled HTTP requests by method and status.
	HTTPRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "scorequorum",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by method and status code.",
	}, []string{"method", "status"})
)

// Registry returns the registry backing the /metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
