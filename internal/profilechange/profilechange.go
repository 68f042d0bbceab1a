package profilechange

import (
	"encoding/json"
	"time"

	"github.com/peoplekit/hrcore/internal"
)

// Fields an employee may ask to change on their own profile. Anything else
// (manager, status, org) is an administrative action, not a request.
var allowedFields = map[string]bool{
	"full_name":    true,
	"email":        true,
	"working_week": true,
}

type ChangeRequest struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	OrgID          int64           `json:"org_id" gorm:"column:org_id;not null"`
	OwnerProfileID int64           `json:"owner_profile_id" gorm:"column:owner_profile_id;not null"`
	Changes        json.RawMessage `json:"changes" gorm:"column:changes;type:jsonb;not null"`
	Status         string          `json:"status" gorm:"column:status;default:pending"`
	ReviewedBy     *int64          `json:"reviewed_by,omitempty" gorm:"column:reviewed_by"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty" gorm:"column:reviewed_at"`
	ReviewerNotes  *string         `json:"reviewer_notes,omitempty" gorm:"column:reviewer_notes"`
	CreatedAt      time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (ChangeRequest) TableName() string {
	return "profile_change_requests"
}

// FieldChanges decodes the stored change set into the form the profile
// update expects.
func (c *ChangeRequest) FieldChanges() (map[string]interface{}, error) {
	var decoded map[string]string
	if err := json.Unmarshal(c.Changes, &decoded); err != nil {
		return nil, err
	}
	fields := make(map[string]interface{}, len(decoded))
	for k, v := range decoded {
		fields[k] = v
	}
	return fields, nil
}

type CreateChangeRequestDTO struct {
	Changes map[string]string `json:"changes"`
}

func (d *CreateChangeRequestDTO) Validate() error {
	if len(d.Changes) == 0 {
		return internal.NewValidationError("at least one field change is required", internal.ErrCodeValidationFailed)
	}
	for field, value := range d.Changes {
		if !allowedFields[field] {
			return internal.NewValidationError("field cannot be changed through a request: "+field, internal.ErrCodeValidationFailed)
		}
		if value == "" {
			return internal.NewValidationError("field value cannot be empty: "+field, internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type TransitionDTO struct {
	Notes *string `json:"notes,omitempty"`
}
