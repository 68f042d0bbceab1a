package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/directory"
)

// Params describes one action to record. TargetProfileID, when set, is
// resolved to a denormalized name at write time.
type Params struct {
	Action          string
	EntityType      string
	EntityID        int64
	TargetProfileID *int64
	Metadata        map[string]interface{}
}

type Service struct {
	repo   Repository
	dir    directory.Repository
	logger *slog.Logger
}

func NewService(repo Repository, dir directory.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, dir: dir, logger: logger}
}

// Record appends one entry attributed to the actor. Callable by any
// authenticated actor for their own actions; the system itself records
// machine-triggered side effects through RecordSystem.
func (s *Service) Record(ctx context.Context, actor *authz.Actor, p Params) error {
	entry := &Entry{
		ID:         ulid.Make().String(),
		OrgID:      actor.OrgID,
		ActorID:    actor.UserID,
		ActorName:  actor.Name,
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Action:     p.Action,
	}

	if p.TargetProfileID != nil {
		entry.TargetID = p.TargetProfileID
		if target, err := s.dir.GetProfileByID(*p.TargetProfileID); err == nil {
			entry.TargetName = &target.FullName
		}
	}

	if len(p.Metadata) > 0 {
		raw, err := json.Marshal(p.Metadata)
		if err != nil {
			s.logger.Error("audit metadata marshal failed", "action", p.Action, "error", err)
		} else {
			entry.Metadata = raw
		}
	}

	if err := s.repo.Append(entry); err != nil {
		s.logger.Error("audit append failed",
			"action", p.Action,
			"entity_type", p.EntityType,
			"entity_id", p.EntityID,
			"actor_id", actor.UserID,
			"error", err)
		return err
	}

	return nil
}

// RecordSystem records a machine-triggered side effect on behalf of the
// actor whose transition caused it.
func (s *Service) RecordSystem(ctx context.Context, orgID int64, p Params) {
	entry := &Entry{
		ID:         ulid.Make().String(),
		OrgID:      orgID,
		ActorID:    0,
		ActorName:  "system",
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Action:     p.Action,
	}
	if len(p.Metadata) > 0 {
		if raw, err := json.Marshal(p.Metadata); err == nil {
			entry.Metadata = raw
		}
	}
	if err := s.repo.Append(entry); err != nil {
		s.logger.Error("system audit append failed", "action", p.Action, "error", err)
	}
}

// RecordOverride implements workflow.OverrideAuditor for the delete guard.
func (s *Service) RecordOverride(ctx context.Context, actor *authz.Actor, event, reason string) {
	_ = s.Record(ctx, actor, Params{
		Action:     event,
		EntityType: "maintenance",
		Metadata:   map[string]interface{}{"reason": reason},
	})
}

// List returns entries for the actor's org, newest first. Read access is
// restricted to admin and HR.
func (s *Service) List(actor *authz.Actor, filter Filter) ([]*Entry, error) {
	if !actor.Has(authz.CapAdminOrHR) {
		s.logger.Warn("audit list denied", "actor_id", actor.UserID)
		return nil, authz.DeniedError(authz.DenyWrongRole)
	}

	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}

	return s.repo.List(actor.OrgID, filter)
}
