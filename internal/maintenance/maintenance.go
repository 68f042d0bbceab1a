package maintenance

import (
	"context"
	"log/slog"
	"strings"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/workflow"
)

// DeleteFunc removes one record through its owning service, which keeps the
// service's own gate check and audit write on the path.
type DeleteFunc func(ctx context.Context, actor *authz.Actor, id int64) error

type DeleteOverrideDTO struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Reason     string `json:"reason"`
}

func (d *DeleteOverrideDTO) Validate() error {
	if d.EntityType == "" {
		return internal.NewValidationError("entity_type is required", internal.ErrCodeValidationFailed)
	}
	if d.EntityID == 0 {
		return internal.NewValidationError("entity_id is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Reason) == "" {
		return internal.NewValidationError("a correction reason is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// CapabilityChecker re-reads capability facts from the directory at decision
// time.
type CapabilityChecker interface {
	HasCapability(userID, orgID int64, cap authz.Capability) bool
}

// Service performs audited guard-override corrections. It is the only code
// path allowed to delete a posted or published record.
type Service struct {
	guard    *workflow.DeleteGuard
	caps     CapabilityChecker
	deleters map[string]DeleteFunc
	logger   *slog.Logger
}

func NewService(guard *workflow.DeleteGuard, caps CapabilityChecker, logger *slog.Logger) *Service {
	return &Service{
		guard:    guard,
		caps:     caps,
		deleters: make(map[string]DeleteFunc),
		logger:   logger,
	}
}

// RegisterDeleter wires one entity type's delete path. Called once at startup.
func (s *Service) RegisterDeleter(entityType string, fn DeleteFunc) {
	s.deleters[entityType] = fn
}

// DeleteWithOverride removes one immutable record inside a bounded override
// window. The guard itself enforces that only an admin may open the window.
func (s *Service) DeleteWithOverride(ctx context.Context, actor *authz.Actor, dto DeleteOverrideDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	// The actor's capability set was resolved when the request was
	// authenticated. An override is privileged enough to re-check the
	// directory at decision time, so an admin role revoked mid-session
	// cannot still open the window.
	if actor == nil || !s.caps.HasCapability(actor.UserID, actor.OrgID, authz.CapAdmin) {
		s.logger.Warn("delete override refused, caller is not a current admin",
			"entity_type", dto.EntityType,
			"entity_id", dto.EntityID)
		return authz.DeniedError(authz.DenyWrongRole)
	}

	deleter, ok := s.deleters[dto.EntityType]
	if !ok {
		return internal.NewValidationError("unknown entity type: "+dto.EntityType, internal.ErrCodeValidationFailed)
	}

	return s.guard.WithOverride(ctx, actor, dto.Reason, func() error {
		return deleter(ctx, actor, dto.EntityID)
	})
}
