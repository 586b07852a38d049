// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// LoginAttemptsTotal counts login outcomes.
// Label:
//   - result: "success", "invalid" (bad input) or "failed" (bad credentials)
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts signed tokens.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of JWTs issued, by token type.",
	},
	[]string{"type"},
)

// TokenRevocationsTotal counts refresh tokens added to the blacklist.
var TokenRevocationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_revocations_total",
		Help:      "Total number of refresh tokens blacklisted.",
	},
)

// SlugCollisionsTotal counts unique-index conflicts on slug columns that forced a retry.
// Label:
//   - entity: "profile", "category" or "product"
var SlugCollisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slug_collisions_total",
		Help:      "Total number of slug conflicts detected at commit time.",
	},
	[]string{"entity"},
)

// AuthorizationDeniedTotal counts write requests rejected by the staff-or-read-only gate.
// Label:
//   - reason: "anonymous" or "forbidden"
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of write requests denied by the catalog gate.",
	},
	[]string{"reason"},
)

// HTTPRequestDuration measures request latency.
// Labels:
//   - method, route (the gin route pattern), status
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// GinMiddleware records HTTPRequestDuration for every routed request.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
