package memo

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
	Create(m *Memo) error
	GetByID(id int64) (*Memo, error)
	GetByOwner(ownerProfileID int64, limit, offset int) ([]*Memo, error)
	GetByOrg(orgID int64, limit, offset int) ([]*Memo, error)
	Update(m *Memo) error
	TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error)
	Delete(id int64) error
}

type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

var auditActions = map[string]string{
	workflow.ActionSubmit:  "memo_submitted",
	workflow.ActionPublish: "memo_published",
	workflow.ActionReject:  "memo_rejected",
}

type Service struct {
	repo    Repository
	gate    *authz.Gate
	engine  *workflow.Engine
	machine *workflow.Machine
	audit   Recorder
	guard   *workflow.DeleteGuard
	logger  *slog.Logger
}

func NewService(repo Repository, gate *authz.Gate, engine *workflow.Engine, auditRec Recorder, guard *workflow.DeleteGuard, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gate:    gate,
		engine:  engine,
		machine: workflow.MemoMachine(),
		audit:   auditRec,
		guard:   guard,
		logger:  logger,
	}
}

func (m *Memo) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityMemo,
		ID:             m.ID,
		OwnerProfileID: m.OwnerProfileID,
		OrgID:          m.OrgID,
		Status:         m.Status,
	}
}

// CreateMemo creates a draft owned by the acting principal.
func (s *Service) CreateMemo(ctx context.Context, actor *authz.Actor, dto CreateMemoDTO) (*Memo, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m := &Memo{
		OrgID:          actor.OrgID,
		OwnerProfileID: actor.ProfileID,
		Title:          dto.Title,
		Body:           dto.Body,
		AttachmentKey:  dto.AttachmentKey,
		Status:         workflow.StatusDraft,
	}

	if decision := s.gate.Can(actor, authz.ActionCreate, m.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(m); err != nil {
		s.logger.Error("failed to create memo", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	s.logger.Info("memo created", "memo_id", m.ID, "actor_id", actor.UserID)
	return m, nil
}

func (s *Service) GetMemo(ctx context.Context, actor *authz.Actor, id int64) (*Memo, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, m.resource()); !decision.Allowed {
		s.logger.Warn("memo read denied", "memo_id", id, "actor_id", actor.UserID, "reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	return m, nil
}

func (s *Service) ListMemos(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Memo, error) {
	if actor.HasAny(authz.CapAdminOrHR, authz.CapManager) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByOwner(actor.ProfileID, limit, offset)
}

// UpdateMemo edits a draft. The gate restricts owner edits to pre-approval
// states, so a memo already under review is immutable to its author.
func (s *Service) UpdateMemo(ctx context.Context, actor *authz.Actor, id int64, dto UpdateMemoDTO) (*Memo, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionUpdate, m.resource()); !decision.Allowed {
		return nil, authz.DeniedError(decision.Reason)
	}

	if dto.Title != nil {
		m.Title = *dto.Title
	}
	if dto.Body != nil {
		m.Body = *dto.Body
	}

	if err := s.repo.Update(m); err != nil {
		return nil, err
	}

	return m, nil
}

// Transition applies submit/publish/reject through the workflow engine with
// the usual commit-time status precondition.
func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*Memo, error) {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actor.OrgID != m.OrgID {
		return nil, authz.DeniedError(authz.DenyNotOrgMember)
	}

	from := m.Status
	to, err := s.engine.Next(s.machine, from, action, actor, m.OwnerProfileID)
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

	m.Status = to
	m.ReviewedBy = &actor.ProfileID
	m.ReviewedAt = &now
	m.ReviewerNotes = notes

	if label, ok := auditActions[action]; ok {
		if err := s.audit.Record(ctx, actor, audit.Params{
			Action:          label,
			EntityType:      authz.EntityMemo,
			EntityID:        m.ID,
			TargetProfileID: &m.OwnerProfileID,
			Metadata:        map[string]interface{}{"from": from, "to": to},
		}); err != nil {
			s.logger.Warn("audit record failed for memo transition", "memo_id", m.ID, "error", err)
		}
	}

	s.logger.Info("memo transitioned", "memo_id", m.ID, "from", from, "to", to, "actor_id", actor.UserID)
	return m, nil
}

// DeleteMemo removes a memo. Published memos are externally consumed and
// fall under the delete guard.
func (s *Service) DeleteMemo(ctx context.Context, actor *authz.Actor, id int64) error {
	m, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.guard.CheckDelete(m.IsPublished()); err != nil {
		return err
	}

	if decision := s.gate.Can(actor, authz.ActionDelete, m.resource()); !decision.Allowed {
		return authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:          "memo_deleted",
		EntityType:      authz.EntityMemo,
		EntityID:        id,
		TargetProfileID: &m.OwnerProfileID,
	}); err != nil {
		s.logger.Warn("audit record failed for memo delete", "memo_id", id, "error", err)
	}

	return nil
}
