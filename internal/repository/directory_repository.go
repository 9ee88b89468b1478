package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"risk-register-service/internal/cache"
	"risk-register-service/internal/models"
	"risk-register-service/internal/workflow"
)

// DirectoryRepository resolves users, role rows and org prefixes from the
// employee directory tables, with a Redis cache in front of the org lookup.
// It implements the collaborator interfaces the workflow resolver depends on.
type DirectoryRepository struct {
	db       *gorm.DB
	orgCache *cache.OrgPrefixCache
}

// NewDirectoryRepository creates a new DirectoryRepository. orgCache may be
// nil, in which case every lookup goes to the database.
func NewDirectoryRepository(db *gorm.DB, orgCache *cache.OrgPrefixCache) *DirectoryRepository {
	return &DirectoryRepository{db: db, orgCache: orgCache}
}

var (
	_ workflow.RoleDirectory     = (*DirectoryRepository)(nil)
	_ workflow.OrgLookup         = (*DirectoryRepository)(nil)
	_ workflow.SuperadminChecker = (*DirectoryRepository)(nil)
)

// RoleRowsForUser returns the user's role assignments in their assigned
// order, keyed by user id.
func (r *DirectoryRepository) RoleRowsForUser(ctx context.Context, userID int64) ([]workflow.RoleRow, error) {
	var assignments []models.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrLookupFailure, err)
	}
	return toRoleRows(assignments), nil
}

// RoleRowsForNIK returns role assignments keyed by the NIK employee number,
// the fallback identity key.
func (r *DirectoryRepository) RoleRowsForNIK(ctx context.Context, nik string) ([]workflow.RoleRow, error) {
	var assignments []models.UserRole
	err := r.db.WithContext(ctx).
		Where("nik = ?", nik).
		Order("position ASC, id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workflow.ErrLookupFailure, err)
	}
	return toRoleRows(assignments), nil
}

func toRoleRows(assignments []models.UserRole) []workflow.RoleRow {
	rows := make([]workflow.RoleRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, workflow.RoleRow{RoleID: a.RoleID, Code: a.Code, Name: a.Name})
	}
	return rows
}

// OrgPrefixForUser resolves the 2-letter org prefix for a user, consulting
// the cache first. An unknown user yields "" without an error so the
// resolver can fail closed.
func (r *DirectoryRepository) OrgPrefixForUser(ctx context.Context, userID int64, nik string) (string, error) {
	if r.orgCache != nil {
		if prefix, ok, err := r.orgCache.Get(ctx, userID); err == nil && ok {
			return prefix, nil
		}
	}

	var employee models.Employee
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&employee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && nik != "" {
		err = r.db.WithContext(ctx).Where("nik = ?", nik).First(&employee).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", workflow.ErrLookupFailure, err)
	}

	prefix := workflow.NormalizeOrgPrefix(employee.OrganizationName)
	if r.orgCache != nil {
		_ = r.orgCache.Set(ctx, userID, prefix)
	}
	return prefix, nil
}

// IsSuperadmin reports superadmin membership from the membership table.
func (r *DirectoryRepository) IsSuperadmin(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SuperadminMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

// ListEmployees returns the directory page used by the cache refresh job.
func (r *DirectoryRepository) ListEmployees(ctx context.Context, limit, offset int) ([]models.Employee, error) {
	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Order("user_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&employees).Error
	return employees, err
}
