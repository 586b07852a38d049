package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Health is a liveness probe.
func (h *HTTPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready checks the database and, when configured, the revocation cache.
func (h *HTTPHandler) Ready(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK
	if err := h.repo.Ping(ctx); err != nil {
		logrus.WithError(err).Warn("database readiness check failed")
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.revocations != nil {
		checks["cache"] = "ok"
		if err := h.revocations.Ping(ctx); err != nil {
			// The cache is advisory, so a failure degrades but does not fail readiness.
			logrus.WithError(err).Warn("revocation cache readiness check failed")
			checks["cache"] = "degraded"
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
}
