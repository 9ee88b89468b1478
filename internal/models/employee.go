package models

import "time"

// Employee mirrors the HR directory rows this service needs: the two identity
// keys and the organization the visibility prefix is derived from.
type Employee struct {
	UserID           int64     `gorm:"primaryKey" json:"userId"`
	NIK              string    `gorm:"type:varchar(20);uniqueIndex" json:"nik"`
	FullName         string    `gorm:"type:varchar(255);not null" json:"fullName"`
	OrganizationName string    `gorm:"type:varchar(255)" json:"organizationName"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table name for Employee
func (Employee) TableName() string {
	return "employees"
}

// UserRole is one role assignment from the external role table. Code and
// Name are free text; the workflow package classifies them into a RoleType.
// Assignments may be keyed by user id, NIK, or both.
type UserRole struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID    int64     `gorm:"not null;index" json:"roleId"`
	UserID    *int64    `gorm:"index" json:"userId,omitempty"`
	NIK       string    `gorm:"type:varchar(20);index" json:"nik,omitempty"`
	Code      string    `gorm:"type:varchar(100);not null" json:"code"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for UserRole
func (UserRole) TableName() string {
	return "user_roles"
}

// SuperadminMember marks a user as superadmin independently of the fixed
// superadmin identity configured in the environment.
type SuperadminMember struct {
	UserID    int64     `gorm:"primaryKey" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName returns the table name for SuperadminMember
func (SuperadminMember) TableName() string {
	return "superadmin_members"
}
