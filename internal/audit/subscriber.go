package audit

import (
	"context"
	"fmt"

	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/core/events"
	"github.com/peoplekit/hrcore/internal/workflow"
)

// TransitionSubscriber records completed workflow transitions as system
// audit entries. A paid expense carries a posted journal with it, so that
// transition is labeled after the ledger side effect it triggered.
func TransitionSubscriber(svc *Service) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		data, ok := event.Payload().(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected payload for event %s", event.EventType())
		}

		entityType := asString(data["entity_type"])
		to := asString(data["to"])

		action := "workflow_transitioned"
		if entityType == authz.EntityExpense && to == workflow.StatusPaid {
			action = "journal_posted"
		}

		svc.RecordSystem(ctx, asInt64(data["org_id"]), Params{
			Action:     action,
			EntityType: entityType,
			EntityID:   asInt64(data["entity_id"]),
			Metadata: map[string]interface{}{
				"from":     data["from"],
				"to":       to,
				"actor_id": data["actor_id"],
				"event_id": event.EventID(),
			},
		})
		return nil
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
