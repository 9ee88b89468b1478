package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"risk-register-service/internal/models"
	"risk-register-service/internal/workflow"
)

var (
	ErrNotFound = errors.New("not found")
)

// RiskRepositoryInterface abstracts risk persistence for the workflow
// services (and their mocks).
type RiskRepositoryInterface interface {
	WithTransaction(ctx context.Context, fn func(txRepo RiskRepositoryInterface) error) error
	Create(ctx context.Context, risk *models.Risk) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Risk, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.Risk, error)
	UpdateStatus(ctx context.Context, risk *models.Risk, newStatus int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope workflow.Scope, limit, offset int) ([]models.Risk, int64, error)
	ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.Risk, int64, error)
	StageTwoReady(ctx context.Context, riskID uuid.UUID) (bool, error)
	StageThreeReady(ctx context.Context, riskID uuid.UUID) (bool, error)
	NextRiskNumber(ctx context.Context, prefix string) (string, error)
	SetRiskNumber(ctx context.Context, riskID uuid.UUID, number string) error
	UpsertApproval(ctx context.Context, record *models.ApprovalRecord) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RiskRepository handles database operations for risk register entries
type RiskRepository struct {
	db *gorm.DB
}

// NewRiskRepository creates a new RiskRepository
func NewRiskRepository(db *gorm.DB) *RiskRepository {
	return &RiskRepository{db: db}
}

var _ RiskRepositoryInterface = (*RiskRepository)(nil)

// WithTransaction runs fn against a transaction-scoped repository. Every
// state-changing decision goes through this so the row lock, the status
// change and the approval record commit or roll back together.
func (r *RiskRepository) WithTransaction(ctx context.Context, fn func(txRepo RiskRepositoryInterface) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RiskRepository{db: tx})
	})
}

// Create creates a new risk entry
func (r *RiskRepository) Create(ctx context.Context, risk *models.Risk) error {
	return r.db.WithContext(ctx).Create(risk).Error
}

// GetByID retrieves a risk by ID
func (r *RiskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Risk, error) {
	var risk models.Risk
	err := r.db.WithContext(ctx).
		Preload("Inherents").
		Where("id = ?", id).
		First(&risk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

// LockByID reads a risk with SELECT ... FOR UPDATE. Callers must hold a
// transaction; the locked read closes the race between the authorization
// check and the status mutation.
func (r *RiskRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.Risk, error) {
	var risk models.Risk
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&risk).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &risk, nil
}

// UpdateStatus persists a status transition together with the approver
// tracking array.
func (r *RiskRepository) UpdateStatus(ctx context.Context, risk *models.Risk, newStatus int) error {
	result := r.db.WithContext(ctx).Model(risk).
		Updates(map[string]interface{}{
			"status":                 newStatus,
			"completed_approver_ids": risk.CompletedApproverIDs,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	risk.Status = newStatus
	return nil
}

// Delete hard-deletes a risk entry together with its assessment children and
// approval records. Only the two-party delete sub-protocol reaches this. The
// children go first to satisfy the foreign keys AutoMigrate creates for the
// assessment relations; audit trail rows are kept.
func (r *RiskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("inherent_id IN (?)", r.inherentIDs(id)).
		Delete(&models.RiskRealization{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("inherent_id IN (?)", r.inherentIDs(id)).
		Delete(&models.RiskMitigation{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("risk_id = ?", id).
		Delete(&models.RiskInherent{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", models.EntityRisk, id).
		Delete(&models.ApprovalRecord{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Risk{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// inherentIDs builds the id subquery for the risk's inherent assessments. A
// fresh query per call keeps the subquery reusable across delete statements.
func (r *RiskRepository) inherentIDs(riskID uuid.UUID) *gorm.DB {
	return r.db.Model(&models.RiskInherent{}).Select("id").Where("risk_id = ?", riskID)
}

// List retrieves risks visible under the given scope.
func (r *RiskRepository) List(ctx context.Context, scope workflow.Scope, limit, offset int) ([]models.Risk, int64, error) {
	var risks []models.Risk
	var total int64

	query := scope.Apply(r.db.WithContext(ctx).Model(&models.Risk{}))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&risks).Error

	return risks, total, err
}

// ListForApproval retrieves the "needs my action" view: rows inside the base
// scope at a status the role acts on, OR-ed with rows the user already acted
// on (their approval record keeps history visible as the entry moves on).
func (r *RiskRepository) ListForApproval(ctx context.Context, wctx *workflow.Context, limit, offset int) ([]models.Risk, int64, error) {
	if wctx.IsEffectiveSuperadmin {
		return r.List(ctx, workflow.Scope{All: true}, limit, offset)
	}

	var risks []models.Risk
	var total int64

	scope := workflow.BaseScope(wctx)
	actionable := workflow.RiskActionableStatuses(wctx.EffectiveRole())

	contributed := r.db.Model(&models.ApprovalRecord{}).
		Select("entity_id").
		Where("entity_type = ? AND actor_employee_id = ?", models.EntityRisk, wctx.UserID)

	query := r.db.WithContext(ctx).Model(&models.Risk{})
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
		Find(&risks).Error

	return risks, total, err
}

// StageTwoReady reports whether the risk has an inherent assessment with at
// least one mitigation. Gates the officer approval at status 4.
func (r *RiskRepository) StageTwoReady(ctx context.Context, riskID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RiskMitigation{}).
		Joins("JOIN risk_inherents ON risk_inherents.id = risk_mitigations.inherent_id").
		Where("risk_inherents.risk_id = ?", riskID).
		Count(&count).Error
	return count > 0, err
}

// StageThreeReady reports whether the risk has an inherent assessment with at
// least one realization. Gates the officer approval at status 9.
func (r *RiskRepository) StageThreeReady(ctx context.Context, riskID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RiskRealization{}).
		Joins("JOIN risk_inherents ON risk_inherents.id = risk_realizations.inherent_id").
		Where("risk_inherents.risk_id = ?", riskID).
		Count(&count).Error
	return count > 0, err
}

// NextRiskNumber allocates the next free suffix for an org/year prefix, e.g.
// "DK2026" -> "DK202603". An advisory lock keyed by the md5 of the prefix
// serializes concurrent allocations for the same prefix while letting other
// prefixes proceed in parallel; callers must run this inside WithTransaction
// so the lock is held until the allocated number is committed.
func (r *RiskRepository) NextRiskNumber(ctx context.Context, prefix string) (string, error) {
	err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(('x' || substr(md5(?), 1, 16))::bit(64)::bigint)", prefix).Error
	if err != nil {
		return "", fmt.Errorf("failed to take allocation lock: %w", err)
	}

	var maxSuffix int
	err = r.db.WithContext(ctx).Model(&models.Risk{}).
		Select("COALESCE(MAX(CAST(RIGHT(risk_number, 2) AS INTEGER)), -1)").
		Where("risk_number ~ ?", "^"+prefix+"[0-9]{2}$").
		Scan(&maxSuffix).Error
	if err != nil {
		return "", err
	}

	next := maxSuffix + 1
	if next > 99 {
		return "", workflow.ErrSequenceExhausted
	}
	return fmt.Sprintf("%s%02d", prefix, next), nil
}

// SetRiskNumber stores an allocated number on a risk entry.
func (r *RiskRepository) SetRiskNumber(ctx context.Context, riskID uuid.UUID, number string) error {
	result := r.db.WithContext(ctx).Model(&models.Risk{}).
		Where("id = ?", riskID).
		Update("risk_number", number)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertApproval records a reviewer decision, updating the existing record
// when the same actor decides on the same entity again.
func (r *RiskRepository) UpsertApproval(ctx context.Context, record *models.ApprovalRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "entity_id"}, {Name: "actor_employee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"role_id", "actor_name", "decision", "status_before", "status_after", "updated_at",
		}),
	}).Create(record).Error
}

// CreateAuditLog creates an audit log entry
func (r *RiskRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
