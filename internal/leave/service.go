package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/workflow"
)

type Repository interface {
	Create(req *Request) error
	GetByID(id int64) (*Request, error)
	GetByOwner(ownerProfileID int64, limit, offset int) ([]*Request, error)
	GetByOrg(orgID int64, limit, offset int) ([]*Request, error)
	TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error)
}

type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

var auditActions = map[string]string{
	workflow.ActionApprove: "leave_approved",
	workflow.ActionReject:  "leave_rejected",
}

type Service struct {
	repo    Repository
	gate    *authz.Gate
	engine  *workflow.Engine
	machine *workflow.Machine
	audit   Recorder
	logger  *slog.Logger
}

func NewService(repo Repository, gate *authz.Gate, engine *workflow.Engine, auditRec Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gate:    gate,
		engine:  engine,
		machine: workflow.LeaveMachine(),
		audit:   auditRec,
		logger:  logger,
	}
}

func (r *Request) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityLeaveRequest,
		ID:             r.ID,
		OwnerProfileID: r.OwnerProfileID,
		OrgID:          r.OrgID,
		Status:         r.Status,
	}
}

// SubmitRequest creates a pending leave request. Only the owner may submit
// for themselves; there is no submit-on-behalf path.
func (s *Service) SubmitRequest(ctx context.Context, actor *authz.Actor, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req := &Request{
		OrgID:          actor.OrgID,
		OwnerProfileID: actor.ProfileID,
		Kind:           dto.Kind,
		StartDate:      dto.StartDate,
		EndDate:        dto.EndDate,
		Reason:         dto.Reason,
		Status:         workflow.StatusPending,
	}

	if decision := s.gate.Can(actor, authz.ActionCreate, req.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:     "leave_submitted",
		EntityType: authz.EntityLeaveRequest,
		EntityID:   req.ID,
		Metadata:   map[string]interface{}{"kind": req.Kind},
	}); err != nil {
		s.logger.Warn("audit record failed for leave submit", "request_id", req.ID, "error", err)
	}

	s.logger.Info("leave request submitted", "request_id", req.ID, "actor_id", actor.UserID)
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, actor *authz.Actor, id int64) (*Request, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, req.resource()); !decision.Allowed {
		s.logger.Warn("leave read denied", "request_id", id, "actor_id", actor.UserID, "reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	return req, nil
}

func (s *Service) ListRequests(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Request, error) {
	if actor.Has(authz.CapAdminOrHR) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByOwner(actor.ProfileID, limit, offset)
}

// Transition approves or rejects a pending request. A second reviewer racing
// the same approval loses the status precondition and gets
// ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*Request, error) {
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

	if label, ok := auditActions[action]; ok {
		if err := s.audit.Record(ctx, actor, audit.Params{
			Action:          label,
			EntityType:      authz.EntityLeaveRequest,
			EntityID:        req.ID,
			TargetProfileID: &req.OwnerProfileID,
			Metadata:        map[string]interface{}{"from": from, "to": to},
		}); err != nil {
			s.logger.Warn("audit record failed for leave transition", "request_id", req.ID, "error", err)
		}
	}

	s.logger.Info("leave request transitioned", "request_id", req.ID, "from", from, "to", to, "actor_id", actor.UserID)
	return req, nil
}
