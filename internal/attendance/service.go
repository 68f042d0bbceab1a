package attendance

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
	Create(c *Correction) error
	GetByID(id int64) (*Correction, error)
	GetByOwner(ownerProfileID int64, limit, offset int) ([]*Correction, error)
	GetByOrg(orgID int64, limit, offset int) ([]*Correction, error)
	TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error)
}

type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

var auditActions = map[string]string{
	workflow.ActionApprove: "attendance_correction_approved",
	workflow.ActionReject:  "attendance_correction_rejected",
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
		machine: workflow.AttendanceMachine(),
		audit:   auditRec,
		logger:  logger,
	}
}

func (c *Correction) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityAttendanceCorrection,
		ID:             c.ID,
		OwnerProfileID: c.OwnerProfileID,
		OrgID:          c.OrgID,
		Status:         c.Status,
	}
}

func (s *Service) SubmitCorrection(ctx context.Context, actor *authz.Actor, dto CreateCorrectionDTO) (*Correction, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := &Correction{
		OrgID:          actor.OrgID,
		OwnerProfileID: actor.ProfileID,
		Date:           dto.Date,
		CheckIn:        dto.CheckIn,
		CheckOut:       dto.CheckOut,
		Reason:         dto.Reason,
		Status:         workflow.StatusPending,
	}

	if decision := s.gate.Can(actor, authz.ActionCreate, c.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create attendance correction", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:     "attendance_correction_submitted",
		EntityType: authz.EntityAttendanceCorrection,
		EntityID:   c.ID,
	}); err != nil {
		s.logger.Warn("audit record failed for correction submit", "correction_id", c.ID, "error", err)
	}

	return c, nil
}

func (s *Service) GetCorrection(ctx context.Context, actor *authz.Actor, id int64) (*Correction, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, c.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	return c, nil
}

func (s *Service) ListCorrections(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Correction, error) {
	if actor.Has(authz.CapAdminOrHR) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByOwner(actor.ProfileID, limit, offset)
}

func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*Correction, error) {
	c, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actor.OrgID != c.OrgID {
		return nil, authz.DeniedError(authz.DenyNotOrgMember)
	}

	from := c.Status
	to, err := s.engine.Next(s.machine, from, action, actor, c.OwnerProfileID)
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

	c.Status = to
	c.ReviewedBy = &actor.ProfileID
	c.ReviewedAt = &now
	c.ReviewerNotes = notes

	if label, ok := auditActions[action]; ok {
		if err := s.audit.Record(ctx, actor, audit.Params{
			Action:          label,
			EntityType:      authz.EntityAttendanceCorrection,
			EntityID:        c.ID,
			TargetProfileID: &c.OwnerProfileID,
			Metadata:        map[string]interface{}{"from": from, "to": to},
		}); err != nil {
			s.logger.Warn("audit record failed for correction transition", "correction_id", c.ID, "error", err)
		}
	}

	return c, nil
}
