package models

import (
	"time"

	"github.com/google/uuid"
)

// LossEvent is one operational loss event entry. It moves through a single
// review stage (officer -> kadiv -> admin submit -> GRC approve) plus the
// delete-request side status.
type LossEvent struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description,omitempty"`
	OwnerOrgCode string    `gorm:"type:varchar(2);not null;index" json:"ownerOrgCode"`

	CreatorUserID int64  `gorm:"not null;index" json:"creatorUserId"`
	CreatorName   string `gorm:"type:varchar(255)" json:"creatorName,omitempty"`

	EventDate  *time.Time `json:"eventDate,omitempty"`
	LossAmount float64    `gorm:"type:numeric(18,2);default:0" json:"lossAmount"`

	Status int `gorm:"not null;default:0;index" json:"status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for LossEvent
func (LossEvent) TableName() string {
	return "loss_events"
}
