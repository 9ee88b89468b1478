package seeders

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"risk-register-service/internal/models"
)

func int64Ptr(v int64) *int64 { return &v }

// SeedDemoDirectory creates or updates a demo employee directory with one
// user per workflow role. Intended for development and staging environments
// where the real HR import is not wired up.
func SeedDemoDirectory(db *gorm.DB) error {
	employees := []models.Employee{
		{UserID: 1001, NIK: "198800101", FullName: "Rina Kusuma", OrganizationName: "TR - Treasury Division"},
		{UserID: 1002, NIK: "198800102", FullName: "Budi Santoso", OrganizationName: "TR - Treasury Division"},
		{UserID: 1003, NIK: "198800103", FullName: "Sari Wulandari", OrganizationName: "TR - Treasury Division"},
		{UserID: 2001, NIK: "198800201", FullName: "Agus Pratama", OrganizationName: "GR - Governance Risk Compliance"},
		{UserID: 2002, NIK: "198800202", FullName: "Dewi Lestari", OrganizationName: "GR - Governance Risk Compliance"},
	}

	for _, emp := range employees {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"nik", "full_name", "organization_name", "updated_at"}),
		}).Create(&emp)
		if result.Error != nil {
			log.Printf("Failed to seed employee %d: %v", emp.UserID, result.Error)
			return result.Error
		}
	}

	roles := []models.UserRole{
		{ID: 11, RoleID: 11, UserID: int64Ptr(1001), NIK: "198800101", Code: "RSA_ENTRY", Name: "RSA Entry Treasury", Position: 1},
		{ID: 12, RoleID: 12, UserID: int64Ptr(1002), NIK: "198800102", Code: "RISK_OFFICER", Name: "Risk Officer Treasury", Position: 1},
		{ID: 13, RoleID: 13, UserID: int64Ptr(1003), NIK: "198800103", Code: "KADIV_TR", Name: "Kepala Divisi Treasury", Position: 1},
		{ID: 21, RoleID: 21, UserID: int64Ptr(2001), NIK: "198800201", Code: "ADMIN_GRC", Name: "Admin GRC", Position: 1},
		{ID: 22, RoleID: 22, UserID: int64Ptr(2002), NIK: "198800202", Code: "APPROVAL_GRC", Name: "Approval GRC", Position: 1},
	}

	for _, role := range roles {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&role)
		if result.Error != nil {
			log.Printf("Failed to seed role %s for user %v: %v", role.Code, role.UserID, result.Error)
			return result.Error
		}
	}

	log.Printf("Seeded demo directory: %d employees, %d role assignments", len(employees), len(roles))
	return nil
}
