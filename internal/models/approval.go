package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Entity type discriminators shared by approval records and audit entries.
const (
	EntityRisk      = "risk"
	EntityLossEvent = "loss_event"
)

// ApprovalRecord is one reviewer's recorded action on an entity. Records are
// upserted on (entity_id, actor_employee_id): a reviewer deciding twice
// updates their record instead of duplicating it.
type ApprovalRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EntityType      string    `gorm:"type:varchar(20);not null;index" json:"entityType"`
	EntityID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_approval_entity_actor" json:"entityId"`
	ActorEmployeeID int64     `gorm:"not null;uniqueIndex:idx_approval_entity_actor;index" json:"actorEmployeeId"`
	RoleID          int64     `json:"roleId"`
	ActorName       string    `gorm:"type:varchar(255)" json:"actorName,omitempty"`
	Decision        string    `gorm:"type:varchar(20);not null" json:"decision"`
	StatusBefore    int       `gorm:"not null" json:"statusBefore"`
	StatusAfter     int       `gorm:"not null" json:"statusAfter"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for ApprovalRecord
func (ApprovalRecord) TableName() string {
	return "approval_records"
}

// Decision constants
const (
	DecisionApproved      = "approved"
	DecisionRejected      = "rejected"
	DecisionDeleteRequest = "delete_requested"
	DecisionDeleted       = "deleted"
)

// AuditLog is the per-entity audit trail. For loss events it doubles as the
// contribution record: any non-"created" entry attributed to a user keeps the
// entity visible to them on approval lists.
type AuditLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EntityType    string         `gorm:"type:varchar(20);not null;index" json:"entityType"`
	EntityID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"entityId"`
	EventType     string         `gorm:"type:varchar(50);not null;index" json:"eventType"`
	ActorUserID   *int64         `gorm:"index" json:"actorUserId,omitempty"`
	ActorRole     string         `gorm:"type:varchar(50)" json:"actorRole,omitempty"`
	PreviousState datatypes.JSON `gorm:"type:jsonb" json:"previousState,omitempty"`
	NewState      datatypes.JSON `gorm:"type:jsonb" json:"newState,omitempty"`
	Metadata      datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditEventType constants
const (
	AuditEventCreated         = "created"
	AuditEventApproved        = "approved"
	AuditEventRejected        = "rejected"
	AuditEventDeleteRequested = "delete_requested"
	AuditEventDeleted         = "deleted"
	AuditEventNumberAssigned  = "number_assigned"
)
