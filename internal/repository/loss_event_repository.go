package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"risk-register-service/internal/models"
	"risk-register-service/internal/workflow"
)

// LossEventRepositoryInterface abstracts loss event persistence for the
// workflow services (and their mocks).
type LossEventRepositoryInterface interface {
	WithTransaction(ctx context.Context, fn func(txRepo LossEventRepositoryInterface) error) error
	Create(ctx context.Context, event *models.LossEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LossEvent, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.LossEvent, error)
	UpdateStatus(ctx context.Context, event *models.LossEvent, newStatus int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope workflow.Scope, limit, offset int) ([]models.LossEvent, int64, error)
	ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.LossEvent, int64, error)
	UpsertApproval(ctx context.Context, record *models.ApprovalRecord) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// LossEventRepository handles database operations for loss event entries
type LossEventRepository struct {
	db *gorm.DB
}

// NewLossEventRepository creates a new LossEventRepository
func NewLossEventRepository(db *gorm.DB) *LossEventRepository {
	return &LossEventRepository{db: db}
}

var _ LossEventRepositoryInterface = (*LossEventRepository)(nil)

// WithTransaction runs fn against a transaction-scoped repository.
func (r *LossEventRepository) WithTransaction(ctx context.Context, fn func(txRepo LossEventRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LossEventRepository{db: tx})
	})
}

// Create creates a new loss event entry
func (r *LossEventRepository) Create(ctx context.Context, event *models.LossEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByID retrieves a loss event by ID
func (r *LossEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LossEvent, error) {
	var event models.LossEvent
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// LockByID reads a loss event with SELECT ... FOR UPDATE inside the caller's
// transaction.
func (r *LossEventRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.LossEvent, error) {
	var event models.LossEvent
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// UpdateStatus persists a status transition.
func (r *LossEventRepository) UpdateStatus(ctx context.Context, event *models.LossEvent, newStatus int) error {
	result := r.db.WithContext(ctx).Model(event).Update("status", newStatus)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	event.Status = newStatus
	return nil
}

// Delete hard-deletes a loss event and its approval records.
func (r *LossEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", models.EntityLossEvent, id).
		Delete(&models.ApprovalRecord{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LossEvent{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves loss events visible under the given scope.
func (r *LossEventRepository) List(ctx context.Context, scope workflow.Scope, limit, offset int) ([]models.LossEvent, int64, error) {
	var events []models.LossEvent
	var total int64

	query := scope.Apply(r.db.WithContext(ctx).Model(&models.LossEvent{}))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	return events, total, err
}

// ListForApproval retrieves the "needs my action" view. The contribution
// clause for loss events is any non-"created" audit entry attributed to the
// user, so reviewers keep seeing entries they already acted on.
func (r *LossEventRepository) ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.LossEvent, int64, error) {
	if wctx.IsEffectiveSuperadmin {
		return r.List(ctx, workflow.Scope{All: true}, limit, offset)
	}

	var events []models.LossEvent
	var total int64

	scope := workflow.BaseScope(wctx)
	actionable := workflow.LossActionableStatuses(wctx.EffectiveRole())

	contributed := r.db.Model(&models.AuditLog{}).
		Select("entity_id").
		Where("entity_type = ? AND actor_user_id = ? AND event_type <> ?",
			models.EntityLossEvent, wctx.UserID, models.AuditEventCreated)

	query := r.db.WithContext(ctx).Model(&models.LossEvent{})
	if len(actionable) > 0 {
		query = scope.Apply(query).Where("status IN ?", actionable)
	} else {
		query = query.Where("1 = 0")
	}
	query = query.Or("id IN (?)", contributed)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&events).Error

	return events, total, err
}

// UpsertApproval records a reviewer decision, updating the existing record
// when the same actor decides on the same entity again.
func (r *LossEventRepository) UpsertApproval(ctx context.Context, record *models.ApprovalRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entity_id"}, {Name: "actor_employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"role_id", "actor_name", "decision", "status_before", "status_after", "updated_at",
		}),
	}).Create(record).Error
}

// CreateAuditLog creates an audit log entry
func (r *LossEventRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
