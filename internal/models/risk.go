package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Risk is one risk register entry moving through the four-stage review
// ladder. The engine only ever writes Status, RiskNumber and the approver
// tracking; the descriptive fields belong to the entry forms.
type Risk struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RiskNumber   string    `gorm:"type:varchar(10);uniqueIndex" json:"riskNumber,omitempty"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	OwnerOrgCode string    `gorm:"type:varchar(2);not null;index" json:"ownerOrgCode"`

	CreatorUserID int64  `gorm:"not null;index" json:"creatorUserId"`
	CreatorName   string `gorm:"type:varchar(255)" json:"creatorName,omitempty"`

	// Status is always one of the 18 risk register statuses; no other value
	// is ever persisted by the engine.
	Status int `gorm:"not null;default:0;index" json:"status"`

	// CompletedApproverIDs tracks which employees already acted on the entry,
	// for quick membership checks on list screens.
	CompletedApproverIDs pq.Int64Array `gorm:"type:bigint[]" json:"completedApproverIds"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Inherents []RiskInherent `gorm:"foreignKey:RiskID" json:"inherents,omitempty"`
}

// TableName returns the table name for Risk
func (Risk) TableName() string {
	return "risks"
}

// RiskInherent is the inherent-risk assessment child of a risk entry.
// Mitigation and realization rows hang off it, and their existence gates the
// officer's stage-2 and stage-3 approvals.
type RiskInherent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RiskID      uuid.UUID `gorm:"type:uuid;not null;index" json:"riskId"`
	Impact      int       `gorm:"not null" json:"impact"`
	Likelihood  int       `gorm:"not null" json:"likelihood"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Mitigations  []RiskMitigation  `gorm:"foreignKey:InherentID" json:"mitigations,omitempty"`
	Realizations []RiskRealization `gorm:"foreignKey:InherentID" json:"realizations,omitempty"`
}

// TableName returns the table name for RiskInherent
func (RiskInherent) TableName() string {
	return "risk_inherents"
}

// RiskMitigation is a planned mitigation for an inherent risk.
type RiskMitigation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InherentID uuid.UUID `gorm:"type:uuid;not null;index" json:"inherentId"`
	Plan       string    `gorm:"type:text;not null" json:"plan"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for RiskMitigation
func (RiskMitigation) TableName() string {
	return "risk_mitigations"
}

// RiskRealization records how an inherent risk actually materialized.
type RiskRealization struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InherentID uuid.UUID `gorm:"type:uuid;not null;index" json:"inherentId"`
	Impact     int       `gorm:"not null" json:"impact"`
	Likelihood int       `gorm:"not null" json:"likelihood"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for RiskRealization
func (RiskRealization) TableName() string {
	return "risk_realizations"
}
