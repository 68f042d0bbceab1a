package memo

import (
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/workflow"
)

// Memo starts as an owner-editable draft and becomes immutable once
// published. A rejected memo stays rejected; authors submit a new one.
type Memo struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	OrgID          int64      `json:"org_id" gorm:"column:org_id;not null"`
	OwnerProfileID int64      `json:"owner_profile_id" gorm:"column:owner_profile_id;not null"`
	Title          string     `json:"title" gorm:"column:title;not null"`
	Body           string     `json:"body" gorm:"column:body"`
	AttachmentKey  *string    `json:"attachment_key,omitempty" gorm:"column:attachment_key"`
	Status         string     `json:"status" gorm:"column:status;default:draft"`
	ReviewedBy     *int64     `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewerNotes  *string    `json:"reviewer_notes,omitempty" gorm:"column:reviewer_notes"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Memo) TableName() string {
	return "memos"
}

func (m *Memo) IsPublished() bool {
	return m.Status == workflow.StatusPublished
}

type CreateMemoDTO struct {
	Title         string  `json:"title"`
	Body          string  `json:"body"`
	AttachmentKey *string `json:"attachment_key,omitempty"`
}

func (d *CreateMemoDTO) Validate() error {
	if d.Title == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateMemoDTO struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

type TransitionDTO struct {
	Notes *string `json:"notes,omitempty"`
}
