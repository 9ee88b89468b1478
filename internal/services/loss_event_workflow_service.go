package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"risk-register-service/internal/events"
	"risk-register-service/internal/models"
	"risk-register-service/internal/repository"
	"risk-register-service/internal/workflow"
)

// LossEventWorkflowService executes workflow decisions on loss event
// entries. The loss event ladder is a single review stage, but the executor
// protocol is the same as the risk domain's: lock the row, re-validate
// against the locked status, commit everything or nothing.
type LossEventWorkflowService struct {
	repo      repository.LossEventRepositoryInterface
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewLossEventWorkflowService creates a new LossEventWorkflowService
func NewLossEventWorkflowService(repo repository.LossEventRepositoryInterface, publisher *events.Publisher, logger *logrus.Logger) *LossEventWorkflowService {
	if logger == nil {
		logger = logrus.New()
	}
	return &LossEventWorkflowService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithField("component", "loss_event_workflow"),
	}
}

// CreateLossEventInput represents input for creating a loss event entry
type CreateLossEventInput struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description,omitempty"`
	OwnerOrgCode string     `json:"ownerOrgCode,omitempty"`
	EventDate    *time.Time `json:"eventDate,omitempty"`
	LossAmount   float64    `json:"lossAmount,omitempty"`
}

// Create creates a new draft loss event owned by the caller's division.
func (s *LossEventWorkflowService) Create(ctx context.Context, wctx *workflow.Context, input CreateLossEventInput) (*models.LossEvent, error) {
	orgCode := workflow.NormalizeOrgPrefix(input.OwnerOrgCode)
	if orgCode == "" {
		orgCode = wctx.OrgPrefix
	}

	event := &models.LossEvent{
		Title:         input.Title,
		Description:   input.Description,
		OwnerOrgCode:  orgCode,
		CreatorUserID: wctx.UserID,
		CreatorName:   wctx.DisplayName,
		EventDate:     input.EventDate,
		LossAmount:    input.LossAmount,
		Status:        workflow.LossStatusDraft,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create loss event: %w", err)
	}

	s.audit(ctx, s.repo, event.ID, models.AuditEventCreated, wctx, nil, map[string]interface{}{"status": event.Status})
	return event, nil
}

// Get retrieves a loss event, enforcing the caller's visibility scope.
func (s *LossEventWorkflowService) Get(ctx context.Context, wctx *workflow.Context, eventID uuid.UUID) (*models.LossEvent, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLossEventNotFound
		}
		return nil, err
	}
	if !workflow.BaseScope(wctx).Matches(event.CreatorUserID, event.OwnerOrgCode) {
		return nil, workflow.ErrNotAuthorized
	}
	return event, nil
}

// List returns the loss events visible to the caller.
func (s *LossEventWorkflowService) List(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.LossEvent, int64, error) {
	return s.repo.List(ctx, workflow.BaseScope(wctx), limit, offset)
}

// ListForApproval returns the caller's "needs my action" view.
func (s *LossEventWorkflowService) ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.LossEvent, int64, error) {
	return s.repo.ListForApproval(ctx, wctx, limit, offset)
}

// Approve advances a loss event one step for the caller's role, or settles a
// pending delete-request by hard-deleting the row.
func (s *LossEventWorkflowService) Approve(ctx context.Context, wctx *workflow.Context, eventID uuid.UUID) (*models.LossEvent, error) {
	role := wctx.EffectiveRole()

	var event *models.LossEvent
	var deleted bool
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.LossEventRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLossEventNotFound
			}
			return err
		}
		statusBefore = locked.Status

		if statusBefore == workflow.LossStatusDeleteRequest {
			if !workflow.LossCanApproveDelete(role, statusBefore) {
				return workflow.ErrNotAuthorized
			}
			s.audit(ctx, tx, eventID, models.AuditEventDeleted, wctx,
				map[string]interface{}{"status": statusBefore}, nil)
			if err := tx.Delete(ctx, eventID); err != nil {
				return fmt.Errorf("failed to delete loss event: %w", err)
			}
			event = locked
			deleted = true
			return nil
		}

		next, ok := workflow.LossApproveNext(role, statusBefore)
		if !ok {
			return workflow.ErrInvalidTransition
		}

		if err := tx.UpdateStatus(ctx, locked, next); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityLossEvent,
			EntityID:        eventID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionApproved,
			StatusBefore:    statusBefore,
			StatusAfter:     next,
		}); err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		s.audit(ctx, tx, eventID, models.AuditEventApproved, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": next})
		event = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	if deleted {
		s.publishDecision(events.SubjectLossEventDeleted, event, models.DecisionDeleted, statusBefore, statusBefore, wctx)
		return event, nil
	}
	s.publishDecision(events.SubjectLossEventApproved, event, models.DecisionApproved, statusBefore, event.Status, wctx)
	return event, nil
}

// Reject sends a loss event back one step for the caller's role. A rejected
// delete-request returns to the kadiv-approved status it was requested from.
func (s *LossEventWorkflowService) Reject(ctx context.Context, wctx *workflow.Context, eventID uuid.UUID) (*models.LossEvent, error) {
	role := wctx.EffectiveRole()

	var event *models.LossEvent
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.LossEventRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLossEventNotFound
			}
			return err
		}
		statusBefore = locked.Status

		next, ok := workflow.LossRejectNext(role, statusBefore)
		if !ok {
			return workflow.ErrInvalidTransition
		}

		if err := tx.UpdateStatus(ctx, locked, next); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityLossEvent,
			EntityID:        eventID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionRejected,
			StatusBefore:    statusBefore,
			StatusAfter:     next,
		}); err != nil {
			return fmt.Errorf("failed to record rejection: %w", err)
		}

		s.audit(ctx, tx, eventID, models.AuditEventRejected, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": next})
		event = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishDecision(events.SubjectLossEventRejected, event, models.DecisionRejected, statusBefore, event.Status, wctx)
	return event, nil
}

// RequestDelete moves a loss event into the delete-request side status,
// gated at the kadiv-approved status for AdminGrc (or a superadmin).
func (s *LossEventWorkflowService) RequestDelete(ctx context.Context, wctx *workflow.Context, eventID uuid.UUID) (*models.LossEvent, error) {
	role := wctx.EffectiveRole()

	var event *models.LossEvent
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.LossEventRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLossEventNotFound
			}
			return err
		}
		statusBefore = locked.Status

		if !workflow.LossCanRequestDelete(role, statusBefore) {
			return workflow.ErrNotAuthorized
		}

		if err := tx.UpdateStatus(ctx, locked, workflow.LossStatusDeleteRequest); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityLossEvent,
			EntityID:        eventID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionDeleteRequest,
			StatusBefore:    statusBefore,
			StatusAfter:     workflow.LossStatusDeleteRequest,
		}); err != nil {
			return fmt.Errorf("failed to record delete request: %w", err)
		}

		s.audit(ctx, tx, eventID, models.AuditEventDeleteRequested, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": workflow.LossStatusDeleteRequest})
		event = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishDecision(events.SubjectLossEventDeleteRequest, event, models.DecisionDeleteRequest, statusBefore, event.Status, wctx)
	return event, nil
}

func (s *LossEventWorkflowService) audit(ctx context.Context, repo repository.LossEventRepositoryInterface, eventID uuid.UUID, eventType string, wctx *workflow.Context, previous, next map[string]interface{}) {
	entry := &models.AuditLog{
		EntityType:  models.EntityLossEvent,
		EntityID:    eventID,
		EventType:   eventType,
		ActorUserID: &wctx.UserID,
		ActorRole:   string(wctx.EffectiveRole()),
	}
	if previous != nil {
		if data, err := json.Marshal(previous); err == nil {
			entry.PreviousState = datatypes.JSON(data)
		}
	}
	if next != nil {
		if data, err := json.Marshal(next); err == nil {
			entry.NewState = datatypes.JSON(data)
		}
	}
	if err := repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.WithError(err).WithField("loss_event_id", eventID).Warn("Failed to write audit entry")
	}
}

func (s *LossEventWorkflowService) publishDecision(subject string, event *models.LossEvent, decision string, statusBefore, statusAfter int, wctx *workflow.Context) {
	if s.publisher == nil {
		return
	}
	go s.publisher.PublishDecision(subject, events.DecisionEvent{
		EntityType:   models.EntityLossEvent,
		EntityID:     event.ID.String(),
		Decision:     decision,
		StatusBefore: statusBefore,
		StatusAfter:  statusAfter,
		ActorUserID:  wctx.UserID,
		ActorName:    wctx.DisplayName,
	})
}
