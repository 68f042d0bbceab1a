package leave

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
)

const (
	KindCasual = "casual"
	KindSick   = "sick"
	KindEarned = "earned"
	KindUnpaid = "unpaid"
)

type Request struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	OrgID          int64      `json:"org_id" gorm:"column:org_id;not null"`
	OwnerProfileID int64      `json:"owner_profile_id" gorm:"column:owner_profile_id;not null"`
	Kind           string     `json:"kind" gorm:"column:kind;not null"`
	StartDate      time.Time  `json:"start_date" gorm:"column:start_date;type:date;not null"`
	EndDate        time.Time  `json:"end_date" gorm:"column:end_date;type:date;not null"`
	Reason         string     `json:"reason" gorm:"column:reason"`
	Status         string     `json:"status" gorm:"column:status;default:pending"`
	ReviewedBy     *int64     `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewerNotes  *string    `json:"reviewer_notes,omitempty" gorm:"column:reviewer_notes"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "leave_requests"
}

type CreateRequestDTO struct {
	Kind      string    `json:"kind"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

func (d *CreateRequestDTO) Validate() error {
	switch d.Kind {
	case KindCasual, KindSick, KindEarned, KindUnpaid:
	default:
		return internal.NewValidationError("unknown leave kind", internal.ErrCodeValidationFailed)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return internal.NewValidationError("start and end dates are required", internal.ErrCodeInvalidDate)
	}
	if d.EndDate.Before(d.StartDate) {
		return internal.NewValidationError("end date cannot precede start date", internal.ErrCodeInvalidDate)
	}
	return nil
}

type TransitionDTO struct {
	Notes *string `json:"notes,omitempty"`
}
