package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"risk-register-service/internal/middleware"
	"risk-register-service/internal/services"
	"risk-register-service/internal/workflow"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{services.ErrRiskNotFound, http.StatusNotFound},
		{services.ErrLossEventNotFound, http.StatusNotFound},
		{workflow.ErrNotAuthorized, http.StatusForbidden},
		{workflow.ErrInvalidTransition, http.StatusConflict},
		{workflow.ErrSequenceExhausted, http.StatusConflict},
		{services.ErrAlreadyNumbered, http.StatusConflict},
		{services.ErrMissingOrgCode, http.StatusConflict},
		{services.ErrInvalidSimulationRole, http.StatusBadRequest},
		{fmt.Errorf("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, statusForError(tc.err), "error %v", tc.err)
	}
}

func TestStatusForError_WrappedSentinel(t *testing.T) {
	// The readiness gates wrap ErrNotAuthorized with detail text.
	err := fmt.Errorf("%w: mitigation plan required before stage 2 approval", workflow.ErrNotAuthorized)
	assert.Equal(t, http.StatusForbidden, statusForError(err))
}

func TestPagination_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/risks", nil)

	limit, offset := pagination(c)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
}

func TestPagination_ClampsOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/risks?limit=5000&offset=-3", nil)

	limit, offset := pagination(c)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
}

func TestPagination_HonorsExplicitValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/risks?limit=50&offset=100", nil)

	limit, offset := pagination(c)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 100, offset)
}

func TestResolveContext_MissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/risks", nil)

	resolver := workflow.NewResolver(1, nil, nil, nil, nil, nil)
	_, _, ok := resolveContext(c, resolver)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResolveContext_MemoizesWithinOneRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := workflow.NewResolver(1, nil, nil, nil, nil, nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1})
	signed, err := token.SignedString([]byte("test-secret"))
	assert.NoError(t, err)

	var first, second *workflow.Context
	router := gin.New()
	router.Use(middleware.JWTAuth("test-secret"))
	router.GET("/whoami", func(c *gin.Context) {
		first, _, _ = resolveContext(c, resolver)
		second, _, _ = resolveContext(c, resolver)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, first)
	// The same request reuses the resolved context instead of rebuilding it.
	assert.Same(t, first, second)
}
