package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"risk-register-service/internal/events"
	"risk-register-service/internal/models"
	"risk-register-service/internal/repository"
	"risk-register-service/internal/workflow"
)

var (
	ErrRiskNotFound      = errors.New("risk entry not found")
	ErrLossEventNotFound = errors.New("loss event entry not found")
	ErrAlreadyNumbered   = errors.New("risk entry already has a number")
	ErrMissingOrgCode    = errors.New("risk entry has no owning division code")
)

// RiskWorkflowService executes workflow decisions on risk register entries.
// Every decision runs inside a transaction that locks the target row and
// re-validates authorization against the locked status, so a stale read can
// never commit an unauthorized transition.
type RiskWorkflowService struct {
	repo      repository.RiskRepositoryInterface
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewRiskWorkflowService creates a new RiskWorkflowService
func NewRiskWorkflowService(repo repository.RiskRepositoryInterface, publisher *events.Publisher, logger *logrus.Logger) *RiskWorkflowService {
	if logger == nil {
		logger = logrus.New()
	}
	return &RiskWorkflowService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.WithField("component", "risk_workflow"),
	}
}

// CreateRiskInput represents input for creating a risk entry
type CreateRiskInput struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description,omitempty"`
	OwnerOrgCode string `json:"ownerOrgCode,omitempty"`
}

// Create creates a new draft risk entry owned by the caller's division.
func (s *RiskWorkflowService) Create(ctx context.Context, wctx *workflow.Context, input CreateRiskInput) (*models.Risk, error) {
	orgCode := workflow.NormalizeOrgPrefix(input.OwnerOrgCode)
	if orgCode == "" {
		orgCode = wctx.OrgPrefix
	}

	risk := &models.Risk{
		Title:         input.Title,
		Description:   input.Description,
		OwnerOrgCode:  orgCode,
		CreatorUserID: wctx.UserID,
		CreatorName:   wctx.DisplayName,
		Status:        workflow.RiskStatusDraft,
	}

	if err := s.repo.Create(ctx, risk); err != nil {
		return nil, fmt.Errorf("failed to create risk entry: %w", err)
	}

	s.audit(ctx, s.repo, risk.ID, models.AuditEventCreated, wctx, nil, map[string]interface{}{"status": risk.Status})
	return risk, nil
}

// Get retrieves a risk entry, enforcing the caller's visibility scope.
func (s *RiskWorkflowService) Get(ctx context.Context, wctx *workflow.Context, riskID uuid.UUID) (*models.Risk, error) {
	risk, err := s.repo.GetByID(ctx, riskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRiskNotFound
		}
		return nil, err
	}
	if !workflow.BaseScope(wctx).Matches(risk.CreatorUserID, risk.OwnerOrgCode) {
		return nil, workflow.ErrNotAuthorized
	}
	return risk, nil
}

// List returns the risks visible to the caller.
func (s *RiskWorkflowService) List(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.Risk, int64, error) {
	return s.repo.List(ctx, workflow.BaseScope(wctx), limit, offset)
}

// ListForApproval returns the caller's "needs my action" view.
func (s *RiskWorkflowService) ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.Risk, int64, error) {
	return s.repo.ListForApproval(ctx, wctx, limit, offset)
}

// Approve advances a risk one step for the caller's role. On a
// delete-requested row this settles the delete sub-protocol instead: the row
// is hard-deleted when the caller holds the approving authority.
func (s *RiskWorkflowService) Approve(ctx context.Context, wctx *workflow.Context, riskID uuid.UUID) (*models.Risk, error) {
	role := wctx.EffectiveRole()

	var risk *models.Risk
	var deleted bool
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.RiskRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, riskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRiskNotFound
			}
			return err
		}
		// Authorization is decided on the status of the locked row, not on
		// whatever the caller read before.
		statusBefore = locked.Status

		if statusBefore == workflow.RiskStatusDeleteRequest {
			if !workflow.RiskCanApproveDelete(role, statusBefore) {
				return workflow.ErrNotAuthorized
			}
			s.audit(ctx, tx, riskID, models.AuditEventDeleted, wctx,
				map[string]interface{}{"status": statusBefore}, nil)
			if err := tx.Delete(ctx, riskID); err != nil {
				return fmt.Errorf("failed to delete risk entry: %w", err)
			}
			risk = locked
			deleted = true
			return nil
		}

		next, ok := workflow.RiskApproveNext(role, statusBefore)
		if !ok {
			return workflow.ErrInvalidTransition
		}

		if role == workflow.RoleRiskOfficer {
			if err := s.checkReadiness(ctx, tx, riskID, statusBefore); err != nil {
				return err
			}
		}

		locked.CompletedApproverIDs = appendApprover(locked.CompletedApproverIDs, wctx.UserID)
		if err := tx.UpdateStatus(ctx, locked, next); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityRisk,
			EntityID:        riskID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionApproved,
			StatusBefore:    statusBefore,
			StatusAfter:     next,
		}); err != nil {
			return fmt.Errorf("failed to record approval: %w", err)
		}

		s.audit(ctx, tx, riskID, models.AuditEventApproved, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": next})
		risk = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	if deleted {
		s.publishDecision(events.SubjectRiskDeleted, risk, models.DecisionDeleted, workflow.RiskStatusDeleteRequest, workflow.RiskStatusDeleteRequest, wctx)
		return risk, nil
	}
	s.publishDecision(events.SubjectRiskApproved, risk, models.DecisionApproved, statusBefore, risk.Status, wctx)
	return risk, nil
}

// Reject sends a risk back one step for the caller's role. ApprovalGrc
// rejecting a delete-request returns the entry to status 2.
func (s *RiskWorkflowService) Reject(ctx context.Context, wctx *workflow.Context, riskID uuid.UUID) (*models.Risk, error) {
	role := wctx.EffectiveRole()

	var risk *models.Risk
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.RiskRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, riskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRiskNotFound
			}
			return err
		}
		statusBefore = locked.Status

		next, ok := workflow.RiskRejectNext(role, statusBefore)
		if !ok {
			return workflow.ErrInvalidTransition
		}

		locked.CompletedApproverIDs = appendApprover(locked.CompletedApproverIDs, wctx.UserID)
		if err := tx.UpdateStatus(ctx, locked, next); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityRisk,
			EntityID:        riskID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionRejected,
			StatusBefore:    statusBefore,
			StatusAfter:     next,
		}); err != nil {
			return fmt.Errorf("failed to record rejection: %w", err)
		}

		s.audit(ctx, tx, riskID, models.AuditEventRejected, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": next})
		risk = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishDecision(events.SubjectRiskRejected, risk, models.DecisionRejected, statusBefore, risk.Status, wctx)
	return risk, nil
}

// RequestDelete moves a risk into the delete-request side status. Only
// AdminGrc (or a superadmin) may request, and only from status 2; a second
// authority has to approve before anything is actually deleted.
func (s *RiskWorkflowService) RequestDelete(ctx context.Context, wctx *workflow.Context, riskID uuid.UUID) (*models.Risk, error) {
	role := wctx.EffectiveRole()

	var risk *models.Risk
	var statusBefore int

	err := s.repo.WithTransaction(ctx, func(tx repository.RiskRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, riskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRiskNotFound
			}
			return err
		}
		statusBefore = locked.Status

		if !workflow.RiskCanRequestDelete(role, statusBefore) {
			return workflow.ErrNotAuthorized
		}

		if err := tx.UpdateStatus(ctx, locked, workflow.RiskStatusDeleteRequest); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		if err := tx.UpsertApproval(ctx, &models.ApprovalRecord{
			EntityType:      models.EntityRisk,
			EntityID:        riskID,
			ActorEmployeeID: wctx.UserID,
			RoleID:          wctx.RoleID,
			ActorName:       wctx.DisplayName,
			Decision:        models.DecisionDeleteRequest,
			StatusBefore:    statusBefore,
			StatusAfter:     workflow.RiskStatusDeleteRequest,
		}); err != nil {
			return fmt.Errorf("failed to record delete request: %w", err)
		}

		s.audit(ctx, tx, riskID, models.AuditEventDeleteRequested, wctx,
			map[string]interface{}{"status": statusBefore},
			map[string]interface{}{"status": workflow.RiskStatusDeleteRequest})
		risk = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishDecision(events.SubjectRiskDeleteRequest, risk, models.DecisionDeleteRequest, statusBefore, risk.Status, wctx)
	return risk, nil
}

// AssignNumber allocates the entry's human-readable risk number, exactly
// once, as DDyyyyNN (org prefix, year, 2-digit sequence). The advisory lock
// inside NextRiskNumber serializes concurrent allocations per prefix.
func (s *RiskWorkflowService) AssignNumber(ctx context.Context, wctx *workflow.Context, riskID uuid.UUID) (*models.Risk, error) {
	role := wctx.EffectiveRole()
	if role != workflow.RoleAdminGrc && role != workflow.RoleSuperadmin {
		return nil, workflow.ErrNotAuthorized
	}

	var risk *models.Risk

	err := s.repo.WithTransaction(ctx, func(tx repository.RiskRepositoryInterface) error {
		locked, err := tx.LockByID(ctx, riskID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRiskNotFound
			}
			return err
		}
		if locked.RiskNumber != "" {
			return ErrAlreadyNumbered
		}
		// Creation tolerates a missing org code, numbering does not: the
		// prefix would collapse to a bare year.
		if locked.OwnerOrgCode == "" {
			return ErrMissingOrgCode
		}

		prefix := fmt.Sprintf("%s%d", locked.OwnerOrgCode, time.Now().Year())
		number, err := tx.NextRiskNumber(ctx, prefix)
		if err != nil {
			return err
		}
		if err := tx.SetRiskNumber(ctx, riskID, number); err != nil {
			return fmt.Errorf("failed to store risk number: %w", err)
		}

		s.audit(ctx, tx, riskID, models.AuditEventNumberAssigned, wctx, nil,
			map[string]interface{}{"risk_number": number})
		locked.RiskNumber = number
		risk = locked
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.publishDecision(events.SubjectRiskNumberAssigned, risk, models.AuditEventNumberAssigned, risk.Status, risk.Status, wctx)
	return risk, nil
}

// checkReadiness enforces the officer-only stage gates: stage 2 approval
// (status 4) needs a mitigation behind the inherent assessment, stage 3
// (status 9) needs a realization.
func (s *RiskWorkflowService) checkReadiness(ctx context.Context, tx repository.RiskRepositoryInterface, riskID uuid.UUID, status int) error {
	switch status {
	case 4:
		ready, err := tx.StageTwoReady(ctx, riskID)
		if err != nil {
			return err
		}
		if !ready {
			return fmt.Errorf("%w: mitigation plan required before stage 2 approval", workflow.ErrNotAuthorized)
		}
	case 9:
		ready, err := tx.StageThreeReady(ctx, riskID)
		if err != nil {
			return err
		}
		if !ready {
			return fmt.Errorf("%w: realization required before stage 3 approval", workflow.ErrNotAuthorized)
		}
	}
	return nil
}

func (s *RiskWorkflowService) audit(ctx context.Context, repo repository.RiskRepositoryInterface, riskID uuid.UUID, eventType string, wctx *workflow.Context, previous, next map[string]interface{}) {
	entry := &models.AuditLog{
		EntityType:  models.EntityRisk,
		EntityID:    riskID,
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
		s.logger.WithError(err).WithField("risk_id", riskID).Warn("Failed to write audit entry")
	}
}

func (s *RiskWorkflowService) publishDecision(subject string, risk *models.Risk, decision string, statusBefore, statusAfter int, wctx *workflow.Context) {
	if s.publisher == nil {
		return
	}
	go s.publisher.PublishDecision(subject, events.DecisionEvent{
		EntityType:   models.EntityRisk,
		EntityID:     risk.ID.String(),
		Decision:     decision,
		StatusBefore: statusBefore,
		StatusAfter:  statusAfter,
		ActorUserID:  wctx.UserID,
		ActorName:    wctx.DisplayName,
		RiskNumber:   risk.RiskNumber,
	})
}

func appendApprover(ids pq.Int64Array, userID int64) pq.Int64Array {
	for _, id := range ids {
		if id == userID {
			return ids
		}
	}
	return append(ids, userID)
}
