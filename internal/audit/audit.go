package audit

import (
	"encoding/json"
	"time"
)

// Entry is one immutable record of a privileged action. Actor and target
// identity are denormalized at write time so entries stay readable after
// profiles change. IDs are ULIDs, so lexical order is chronological.
type Entry struct {
	ID         string          `json:"id" gorm:"primaryKey;size:26"`
	OrgID      int64           `json:"org_id" gorm:"column:org_id;not null;index"`
	ActorID    int64           `json:"actor_id" gorm:"column:actor_id;not null;index"`
	ActorName  string          `json:"actor_name" gorm:"column:actor_name"`
	TargetID   *int64          `json:"target_id,omitempty" gorm:"column:target_id"`
	TargetName *string         `json:"target_name,omitempty" gorm:"column:target_name"`
	EntityType string          `json:"entity_type" gorm:"column:entity_type;index"`
	EntityID   int64           `json:"entity_id" gorm:"column:entity_id"`
	Action     string          `json:"action" gorm:"column:action;not null;index"`
	Metadata   json.RawMessage `json:"metadata,omitempty" gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "audit_entries"
}

// Filter narrows a listing. Zero values mean "any".
type Filter struct {
	Action     string
	EntityType string
	ActorID    int64
	Limit      int
	Offset     int
}

// Repository is append-only by contract: no update or delete methods exist.
type Repository interface {
	Append(entry *Entry) error
	List(orgID int64, filter Filter) ([]*Entry, error)
}
