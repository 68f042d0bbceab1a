package profilechange

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/workflow"
)

type Repository interface {
	Create(req *ChangeRequest) error
	GetByID(id int64) (*ChangeRequest, error)
	GetByOwner(ownerProfileID int64, limit, offset int) ([]*ChangeRequest, error)
	GetByOrg(orgID int64, limit, offset int) ([]*ChangeRequest, error)
	TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error)
}

// ProfileUpdater applies an approved change set to the target profile.
type ProfileUpdater interface {
	UpdateProfileFields(profileID int64, fields map[string]interface{}) error
}

type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

var auditActions = map[string]string{
	workflow.ActionApprove: "profile_change_approved",
	workflow.ActionReject:  "profile_change_rejected",
}

type Service struct {
	repo     Repository
	gate     *authz.Gate
	engine   *workflow.Engine
	machine  *workflow.Machine
	profiles ProfileUpdater
	audit    Recorder
	logger   *slog.Logger
}

func NewService(repo Repository, gate *authz.Gate, engine *workflow.Engine, profiles ProfileUpdater, auditRec Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		engine:   engine,
		machine:  workflow.ProfileChangeMachine(),
		profiles: profiles,
		audit:    auditRec,
		logger:   logger,
	}
}

func (c *ChangeRequest) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityProfileChangeRequest,
		ID:             c.ID,
		OwnerProfileID: c.OwnerProfileID,
		OrgID:          c.OrgID,
		Status:         c.Status,
	}
}

// SubmitRequest files a change request against the actor's own profile.
func (s *Service) SubmitRequest(ctx context.Context, actor *authz.Actor, dto CreateChangeRequestDTO) (*ChangeRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(dto.Changes)
	if err != nil {
		return nil, internal.NewValidationError("changes could not be encoded", internal.ErrCodeValidationFailed)
	}

	req := &ChangeRequest{
		OrgID:          actor.OrgID,
		OwnerProfileID: actor.ProfileID,
		Changes:        raw,
		Status:         workflow.StatusPending,
	}

	if decision := s.gate.Can(actor, authz.ActionCreate, req.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create profile change request", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:     "profile_change_submitted",
		EntityType: authz.EntityProfileChangeRequest,
		EntityID:   req.ID,
		Metadata:   map[string]interface{}{"fields": fieldNames(dto.Changes)},
	}); err != nil {
		s.logger.Warn("audit record failed for profile change submit", "request_id", req.ID, "error", err)
	}

	s.logger.Info("profile change request submitted", "request_id", req.ID, "actor_id", actor.UserID)
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, actor *authz.Actor, id int64) (*ChangeRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, req.resource()); !decision.Allowed {
		s.logger.Warn("profile change read denied", "request_id", id, "actor_id", actor.UserID, "reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*ChangeRequest, error) {
	if actor.Has(authz.CapAdminOrHR) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByOwner(actor.ProfileID, limit, offset)
}

// Transition approves or rejects a pending request. Approval applies the
// requested field changes to the owner's profile after the status has been
// won; the request stays approved even if the later audit write fails.
func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*ChangeRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actor.OrgID != req.OrgID {
		return nil, authz.DeniedError(authz.DenyNotOrgMember)
	}

	from := req.Status
	to, err := s.engine.Next(s.machine, from, action, actor, req.OwnerProfileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	applied, err := s.repo.TransitionStatus(id, from, to, actor.ProfileID, notes, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, internal.ErrInvalidTransition
	}

	req.Status = to
	req.ReviewedBy = &actor.ProfileID
	req.ReviewedAt = &now
	req.ReviewerNotes = notes

	if to == workflow.StatusApproved {
		fields, err := req.FieldChanges()
		if err != nil {
			s.logger.Error("stored change set is unreadable", "request_id", req.ID, "error", err)
			return nil, err
		}
		if err := s.profiles.UpdateProfileFields(req.OwnerProfileID, fields); err != nil {
			s.logger.Error("failed to apply approved profile changes", "request_id", req.ID, "error", err)
			return nil, err
		}
	}

	if label, ok := auditActions[action]; ok {
		if err := s.audit.Record(ctx, actor, audit.Params{
			Action:          label,
			EntityType:      authz.EntityProfileChangeRequest,
			EntityID:        req.ID,
			TargetProfileID: &req.OwnerProfileID,
			Metadata:        map[string]interface{}{"from": from, "to": to},
		}); err != nil {
			s.logger.Warn("audit record failed for profile change transition", "request_id", req.ID, "error", err)
		}
	}

	s.logger.Info("profile change request transitioned", "request_id", req.ID, "from", from, "to", to, "actor_id", actor.UserID)
	return req, nil
}

func fieldNames(changes map[string]string) []string {
	names := make([]string, 0, len(changes))
	for k := range changes {
		names = append(names, k)
	}
	return names
}
