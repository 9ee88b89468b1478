package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"risk-register-service/internal/cache"
)

// HealthHandler reports liveness and readiness. Readiness checks the
// database connection; the Redis cache state is reported but never blocks
// readiness, since lookups degrade to direct database reads without it.
type HealthHandler struct {
	db       *gorm.DB
	orgCache *cache.OrgPrefixCache
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, orgCache *cache.OrgPrefixCache) *HealthHandler {
	return &HealthHandler{db: db, orgCache: orgCache}
}

// Health handles liveness check requests
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "risk-register-service",
	})
}

// Ready handles readiness check requests
func (h *HealthHandler) Ready(c *gin.Context) {
	cacheState := "disabled"
	if h.orgCache != nil && h.orgCache.IsAvailable() {
		cacheState = "up"
	}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"service":  "risk-register-service",
			"database": "down",
			"cache":    cacheState,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"service":  "risk-register-service",
		"database": "up",
		"cache":    cacheState,
	})
}
