package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"risk-register-service/internal/services"
	"risk-register-service/internal/workflow"
)

// SimulationHandler handles the superadmin role simulation endpoints
type SimulationHandler struct {
	service  *services.SimulationService
	resolver *workflow.Resolver
}

// NewSimulationHandler creates a new SimulationHandler
func NewSimulationHandler(service *services.SimulationService, resolver *workflow.Resolver) *SimulationHandler {
	return &SimulationHandler{
		service:  service,
		resolver: resolver,
	}
}

// Current returns the active simulation override for the caller's session
// @Summary Get active simulation
// @Tags Simulation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/simulation [get]
func (h *SimulationHandler) Current(c *gin.Context) {
	wctx, ident, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	state, err := h.service.Current(c.Request.Context(), wctx, ident)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":     state != nil,
		"simulation": state,
	})
}

// Apply sets a simulation override for the caller's session
// @Summary Apply simulation
// @Tags Simulation
// @Accept json
// @Produce json
// @Param request body workflow.SimulationState true "Simulated role"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/simulation [put]
func (h *SimulationHandler) Apply(c *gin.Context) {
	wctx, ident, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	var state workflow.SimulationState
	if err := c.ShouldBindJSON(&state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.Apply(c.Request.Context(), wctx, ident, state); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation applied"})
}

// Reset clears the caller's simulation override
// @Summary Clear simulation
// @Tags Simulation
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/simulation [delete]
func (h *SimulationHandler) Reset(c *gin.Context) {
	wctx, ident, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	if err := h.service.Reset(c.Request.Context(), wctx, ident); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Simulation cleared"})
}
