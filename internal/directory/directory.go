package directory

import (
	"time"
)

// Roles are organization-scoped capability labels. Everyone with an active
// profile is implicitly an employee; no assignment row exists for it.
const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleFinance  = "finance"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
)

// Profile is the organization-scoped person record backing a principal.
// ManagerID is a self-reference forming a tree; the schema rejects cycles.
type Profile struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	OrgID       int64      `json:"org_id" gorm:"column:org_id;not null"`
	UserID      int64      `json:"user_id" gorm:"column:user_id;not null;uniqueIndex"`
	FullName    string     `json:"full_name" gorm:"column:full_name;not null"`
	Email       string     `json:"email" gorm:"column:email"`
	ManagerID   *int64     `json:"manager_id,omitempty" gorm:"column:manager_id"`
	Status      string     `json:"status" gorm:"column:status;default:active"`
	WorkingWeek string     `json:"working_week" gorm:"column:working_week;default:mon-fri"`
	JoinedAt    *time.Time `json:"joined_at,omitempty" gorm:"column:joined_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// RoleAssignment grants one role to a user within one organization. A user
// may hold several roles across or within organizations.
type RoleAssignment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;index:idx_role_user_org"`
	OrgID     int64     `json:"org_id" gorm:"column:org_id;not null;index:idx_role_user_org"`
	Role      string    `json:"role" gorm:"column:role;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// Repository is a privilege-elevated, side-effect-free lookup surface. It is
// consulted from inside permission checks, so it must never route back
// through the authorization gate.
type Repository interface {
	GetProfileByUserID(userID int64) (*Profile, error)
	GetProfileByID(profileID int64) (*Profile, error)
	RolesForUser(userID, orgID int64) ([]string, error)
	UpdateProfileFields(profileID int64, fields map[string]interface{}) error
}
