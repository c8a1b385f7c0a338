// Package metrics defines the custom Prometheus metrics for the auth
// core. It is the single source of truth for metric names, labels, and
// help strings; everything registers against the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "smbsuite"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "inactive", "rate_limited"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenErrorsTotal counts bearer tokens rejected by the principal resolver.
// Label:
//   - reason: "invalid_token", "company_changed", "company_deleted",
//     "company_inactive", "account_inactive"
var TokenErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_errors_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// TenantMismatchesTotal counts requests rejected because the client's
// X-Company-ID header disagreed with the token's company claim.
var TenantMismatchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tenant_mismatches_total",
		Help:      "Total number of requests rejected for a company header/token mismatch.",
	},
)

// AuthResolveDuration measures the full principal resolution chain,
// token decode through repository lookups.
var AuthResolveDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_resolve_duration_seconds",
		Help:      "Duration of authoritative principal resolution.",
		Buckets:   prometheus.DefBuckets,
	},
)
