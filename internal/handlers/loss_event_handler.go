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

// LossEventHandler handles HTTP requests for the loss event workflow
type LossEventHandler struct {
	service  *services.LossEventWorkflowService
	resolver *workflow.Resolver
}

// NewLossEventHandler creates a new LossEventHandler
func NewLossEventHandler(service *services.LossEventWorkflowService, resolver *workflow.Resolver) *LossEventHandler {
	return &LossEventHandler{
		service:  service,
		resolver: resolver,
	}
}

// Create creates a new draft loss event entry
// @Summary Create loss event entry
// @Tags LossEvents
// @Accept json
// @Produce json
// @Param request body services.CreateLossEventInput true "Loss event entry"
// @Success 201 {object} models.LossEvent
// @Router /api/v1/loss-events [post]
func (h *LossEventHandler) Create(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	var input services.CreateLossEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.service.Create(c.Request.Context(), wctx, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Get retrieves a loss event entry by ID
// @Summary Get loss event entry
// @Tags LossEvents
// @Produce json
// @Param id path string true "Loss event ID"
// @Success 200 {object} models.LossEvent
// @Router /api/v1/loss-events/{id} [get]
func (h *LossEventHandler) Get(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loss event id"})
		return
	}

	event, err := h.service.Get(c.Request.Context(), wctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// List lists the loss event entries visible to the caller
// @Summary List loss event entries
// @Tags LossEvents
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/loss-events [get]
func (h *LossEventHandler) List(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	events, total, err := h.service.List(c.Request.Context(), wctx, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ListForApproval lists the loss events awaiting the caller's decision
// @Summary List loss events needing my action
// @Tags LossEvents
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/loss-events/approvals [get]
func (h *LossEventHandler) ListForApproval(c *gin.Context) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	events, total, err := h.service.ListForApproval(c.Request.Context(), wctx, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Approve advances a loss event one workflow step
// @Summary Approve loss event entry
// @Tags LossEvents
// @Produce json
// @Param id path string true "Loss event ID"
// @Success 200 {object} models.LossEvent
// @Router /api/v1/loss-events/{id}/approve [post]
func (h *LossEventHandler) Approve(c *gin.Context) {
	h.decide(c, h.service.Approve)
}

// Reject sends a loss event back one workflow step
// @Summary Reject loss event entry
// @Tags LossEvents
// @Produce json
// @Param id path string true "Loss event ID"
// @Success 200 {object} models.LossEvent
// @Router /api/v1/loss-events/{id}/reject [post]
func (h *LossEventHandler) Reject(c *gin.Context) {
	h.decide(c, h.service.Reject)
}

// RequestDelete opens a delete request on a loss event entry
// @Summary Request deletion of a loss event entry
// @Tags LossEvents
// @Produce json
// @Param id path string true "Loss event ID"
// @Success 200 {object} models.LossEvent
// @Router /api/v1/loss-events/{id}/request-delete [post]
func (h *LossEventHandler) RequestDelete(c *gin.Context) {
	h.decide(c, h.service.RequestDelete)
}

func (h *LossEventHandler) decide(c *gin.Context, op func(context.Context, *workflow.Context, uuid.UUID) (*models.LossEvent, error)) {
	wctx, _, ok := resolveContext(c, h.resolver)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid loss event id"})
		return
	}

	event, err := op(c.Request.Context(), wctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
