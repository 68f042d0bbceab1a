package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeTransition = "workflow.transitioned"

// NewTransitionEvent describes a completed state change, published after the
// guarded update succeeded. Subscribers (notifications, projections) observe
// it; they cannot veto it.
func NewTransitionEvent(entityType string, entityID, orgID int64, from, to string, actorID int64) Event {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventTypeTransition,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"org_id":      orgID,
			"from":        from,
			"to":          to,
			"actor_id":    actorID,
		},
	}
}
