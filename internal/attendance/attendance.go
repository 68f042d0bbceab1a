package attendance

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
)

// Correction is a request to fix a day's check-in/check-out record. It
// follows the same pending -> approved | rejected lifecycle as leave.
type Correction struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	OrgID          int64      `json:"org_id" gorm:"column:org_id;not null"`
	OwnerProfileID int64      `json:"owner_profile_id" gorm:"column:owner_profile_id;not null"`
	Date           time.Time  `json:"date" gorm:"column:date;type:date;not null"`
	CheckIn        *time.Time `json:"check_in,omitempty" gorm:"column:check_in"`
	CheckOut       *time.Time `json:"check_out,omitempty" gorm:"column:check_out"`
	Reason         string     `json:"reason" gorm:"column:reason;not null"`
	Status         string     `json:"status" gorm:"column:status;default:pending"`
	ReviewedBy     *int64     `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewerNotes  *string    `json:"reviewer_notes,omitempty" gorm:"column:reviewer_notes"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Correction) TableName() string {
	return "attendance_corrections"
}

type CreateCorrectionDTO struct {
	Date     time.Time  `json:"date"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Reason   string     `json:"reason"`
}

func (d *CreateCorrectionDTO) Validate() error {
	if d.Date.IsZero() {
		return internal.NewValidationError("date is required", internal.ErrCodeInvalidDate)
	}
	if d.CheckIn == nil && d.CheckOut == nil {
		return internal.NewValidationError("at least one of check_in or check_out is required", internal.ErrCodeValidationFailed)
	}
	if d.Reason == "" {
		return internal.NewValidationError("reason is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type TransitionDTO struct {
	Notes *string `json:"notes,omitempty"`
}
