package workflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
)

// OverrideAuditor records guard override lifecycle events. Both the begin
// and end of an override window are written, even when the correction fails.
type OverrideAuditor interface {
	RecordOverride(ctx context.Context, actor *authz.Actor, event, reason string)
}

// DeleteGuard blocks structural deletion of posted or externally-consumed
// records. The override toggle is process-wide state with an explicit
// begin/end lifecycle; corrections run inside WithOverride so the toggle can
// never be left open.
type DeleteGuard struct {
	mu      sync.Mutex
	runMu   sync.Mutex
	active  bool
	auditor OverrideAuditor
	logger  *slog.Logger
}

func NewDeleteGuard(auditor OverrideAuditor, logger *slog.Logger) *DeleteGuard {
	return &DeleteGuard{auditor: auditor, logger: logger}
}

// CheckDelete returns ErrDeleteBlocked for immutable records while no
// maintenance override is active. Mutable records always pass.
func (g *DeleteGuard) CheckDelete(immutable bool) error {
	if !immutable {
		return nil
	}
	g.mu.Lock()
	active := g.active
	g.mu.Unlock()
	if !active {
		return internal.ErrDeleteBlocked
	}
	return nil
}

// WithOverride runs a bounded maintenance correction with the guard
// disabled. Admin only. The override is serialized process-wide and released
// on every exit path, including a failing correction.
func (g *DeleteGuard) WithOverride(ctx context.Context, actor *authz.Actor, reason string, fn func() error) error {
	if actor == nil || !actor.Has(authz.CapAdmin) {
		return authz.DeniedError(authz.DenyWrongRole)
	}

	// Serialize override windows so one correction's release cannot strip
	// the guard from under another.
	g.runMu.Lock()
	defer g.runMu.Unlock()

	g.mu.Lock()
	g.active = true
	g.mu.Unlock()

	g.logger.Warn("delete guard override activated", "actor_id", actor.UserID, "reason", reason)
	g.auditor.RecordOverride(ctx, actor, "delete_override_begin", reason)

	defer func() {
		g.mu.Lock()
		g.active = false
		g.mu.Unlock()
		g.auditor.RecordOverride(ctx, actor, "delete_override_end", reason)
		g.logger.Warn("delete guard override released", "actor_id", actor.UserID)
	}()

	return fn()
}
