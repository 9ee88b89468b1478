package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"risk-register-service/internal/middleware"
	"risk-register-service/internal/services"
	"risk-register-service/internal/workflow"
)

const workflowContextKey = "workflow_context"

// resolveContext pulls the authenticated identity from the request and
// resolves its workflow context, memoized on the gin context so one request
// resolves at most once. A missing identity means the route was misconfigured
// without the auth middleware.
func resolveContext(c *gin.Context, resolver *workflow.Resolver) (*workflow.Context, workflow.Identity, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return nil, workflow.Identity{}, false
	}
	if cached, exists := c.Get(workflowContextKey); exists {
		if wctx, ok := cached.(*workflow.Context); ok {
			return wctx, ident, true
		}
	}
	wctx := resolver.Resolve(c.Request.Context(), ident)
	c.Set(workflowContextKey, wctx)
	return wctx, ident, true
}

func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// statusForError maps the service sentinels onto HTTP statuses. Unknown
// errors are reported as 500 without leaking their message.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrRiskNotFound),
		errors.Is(err, services.ErrLossEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrSequenceExhausted),
		errors.Is(err, services.ErrAlreadyNumbered),
		errors.Is(err, services.ErrMissingOrgCode):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidSimulationRole):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "An internal error occurred"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
