package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"risk-register-service/internal/models"
	"risk-register-service/internal/services"
	"risk-register-service/internal/workflow"
)

// RiskHandler handles HTTP requests for the risk register workflow
type RiskHandler struct {
	service  *services.RiskWorkflowService
	resolver *workflow.Resolver
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(service *services.RiskWorkflowService, resolver *workflow.Resolver) *RiskHandler {
	return &RiskHandler{
		service:  service,
		resolver: resolver,
	}
}

// Create creates a new draft risk entry
// @Summary Create risk entry
// @Tags Risks
// @Accept json
// @Produce json
// @Param request body services.CreateRiskInput true "Risk entry"
// @Success 201 {object} models.Risk
// @Router /api/v1/risks [post]
func (h *RiskHandler) Create(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	var input services.CreateRiskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	risk, err := h.service.Create(c.Request.Context(), wctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, risk)
}

// Get retrieves a risk entry by ID
// @Summary Get risk entry
// @Tags Risks
// @Produce json
// @Param id path string true "Risk ID"
// @Success 200 {object} models.Risk
// @Router /api/v1/risks/{id} [get]
func (h *RiskHandler) Get(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk id"})
		return
	}

	risk, err := h.service.Get(c.Request.Context(), wctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, risk)
}

// List lists the risk entries visible to the caller
// @Summary List risk entries
// @Tags Risks
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/risks [get]
func (h *RiskHandler) List(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	risks, total, err := h.service.List(c.Request.Context(), wctx, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   risks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ListForApproval lists the risk entries awaiting the caller's decision
// @Summary List risks needing my action
// @Tags Risks
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/risks/approvals [get]
func (h *RiskHandler) ListForApproval(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	risks, total, err := h.service.ListForApproval(c.Request.Context(), wctx, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   risks,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Approve advances a risk entry one workflow step
// @Summary Approve risk entry
// @Tags Risks
// @Produce json
// @Param id path string true "Risk ID"
// @Success 200 {object} models.Risk
// @Router /api/v1/risks/{id}/approve [post]
func (h *RiskHandler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

// Reject sends a risk entry back one workflow step
// @Summary Reject risk entry
// @Tags Risks
// @Produce json
// @Param id path string true "Risk ID"
// @Success 200 {object} models.Risk
// @Router /api/v1/risks/{id}/reject [post]
func (h *RiskHandler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

// RequestDelete opens a delete request on a risk entry
// @Summary Request deletion of a risk entry
// @Tags Risks
// @Produce json
// @Param id path string true "Risk ID"
// @Success 200 {object} models.Risk
// @Router /api/v1/risks/{id}/request-delete [post]
func (h *RiskHandler) RequestDelete(c *gin.Context) {
	h.decide(c, h.service.RequestDelete)
}

// AssignNumber allocates the sequential register number for a risk entry
// @Summary Assign risk register number
// @Tags Risks
// @Produce json
// @Param id path string true "Risk ID"
// @Success 200 {object} models.Risk
// @Router /api/v1/risks/{id}/number [post]
func (h *RiskHandler) AssignNumber(c *gin.Context) {
	h.decide(c, h.service.AssignNumber)
}

// decide runs one workflow decision endpoint. All four share the same
// shape: resolve the caller, parse the id, run the operation.
func (h *RiskHandler) decide(c *gin.Context, op func(context.Context, *workflow.Context, uuid.UUID) (*models.Risk, error)) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid risk id"})
		return
	}

	risk, err := op(c.Request.Context(), wctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, risk)
}
