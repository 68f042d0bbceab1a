package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/audit"
	"github.com/peoplekit/hrcore/internal/authz"
	"github.com/peoplekit/hrcore/internal/core/events"
	"github.com/peoplekit/hrcore/internal/storage"
	"github.com/peoplekit/hrcore/internal/workflow"
)

// Repository defines the data access methods for expenses. TransitionStatus
// carries the from-status as a compare-and-set precondition; false means the
// row was not in that status at commit time.
type Repository interface {
	Create(exp *Expense) error
	GetByID(id int64) (*Expense, error)
	GetByOwner(ownerProfileID int64, limit, offset int) ([]*Expense, error)
	GetByOrg(orgID int64, limit, offset int) ([]*Expense, error)
	TransitionStatus(id int64, from, to string, reviewerID int64, notes *string, at time.Time) (bool, error)
	Delete(id int64) error
}

// Poster posts the payment journal for a paid expense.
type Poster interface {
	PostExpense(ctx context.Context, orgID, expenseID, amount, postedBy int64, description string) error
}

// Recorder appends audit entries for expense actions.
type Recorder interface {
	Record(ctx context.Context, actor *authz.Actor, p audit.Params) error
}

var auditActions = map[string]string{
	workflow.ActionApprove: "expense_approved",
	workflow.ActionReject:  "expense_rejected",
	workflow.ActionPay:     "expense_paid",
}

type Service struct {
	repo    Repository
	gate    *authz.Gate
	engine  *workflow.Engine
	machine *workflow.Machine
	poster  Poster
	audit   Recorder
	guard   *workflow.DeleteGuard
	policy  *storage.AccessPolicy
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, gate *authz.Gate, engine *workflow.Engine, poster Poster, auditRec Recorder, guard *workflow.DeleteGuard, policy *storage.AccessPolicy, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		gate:    gate,
		engine:  engine,
		machine: workflow.ExpenseMachine(),
		poster:  poster,
		audit:   auditRec,
		guard:   guard,
		policy:  policy,
		bus:     bus,
		logger:  logger,
	}
}

func (e *Expense) resource() authz.Resource {
	return authz.Resource{
		Type:           authz.EntityExpense,
		ID:             e.ID,
		OwnerProfileID: e.OwnerProfileID,
		OrgID:          e.OrgID,
		Status:         e.Status,
	}
}

// SubmitExpense creates a new expense owned by the acting principal.
func (s *Service) SubmitExpense(ctx context.Context, actor *authz.Actor, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	// A submitted receipt key must name the submitter's own folder. Keys
	// pointing anywhere else would let the expense lend its visibility to a
	// blob the submitter does not own.
	if dto.ReceiptKey != nil {
		key, err := storage.ParseKey(*dto.ReceiptKey)
		if err != nil {
			return nil, err
		}
		if key.EntityType != authz.EntityExpense || key.OwnerProfileID != actor.ProfileID {
			s.logger.Warn("expense receipt key rejected",
				"actor_id", actor.UserID,
				"receipt_key", *dto.ReceiptKey)
			return nil, authz.DeniedError(authz.DenyNotOwner)
		}
	}

	exp := NewExpense(actor.OrgID, actor.ProfileID, dto)

	if decision := s.gate.Can(actor, authz.ActionCreate, exp.resource()); !decision.Allowed {
		s.logger.Warn("expense create denied", "actor_id", actor.UserID, "reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Create(exp); err != nil {
		s.logger.Error("failed to create expense", "error", err, "actor_id", actor.UserID)
		return nil, err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:     "expense_submitted",
		EntityType: authz.EntityExpense,
		EntityID:   exp.ID,
		Metadata:   map[string]interface{}{"amount_inr": exp.AmountINR},
	}); err != nil {
		s.logger.Warn("audit record failed for expense submit", "expense_id", exp.ID, "error", err)
	}

	s.logger.Info("expense submitted",
		"expense_id", exp.ID,
		"actor_id", actor.UserID,
		"amount", exp.AmountINR)

	return exp, nil
}

// GetExpense retrieves one expense, filtered by the gate.
func (s *Service) GetExpense(ctx context.Context, actor *authz.Actor, id int64) (*Expense, error) {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Can(actor, authz.ActionRead, exp.resource()); !decision.Allowed {
		s.logger.Warn("expense read denied",
			"expense_id", id,
			"actor_id", actor.UserID,
			"reason", decision.Reason)
		return nil, authz.DeniedError(decision.Reason)
	}

	return exp, nil
}

// ListExpenses returns org-wide records for role-qualified readers and the
// caller's own records for everyone else.
func (s *Service) ListExpenses(ctx context.Context, actor *authz.Actor, limit, offset int) ([]*Expense, error) {
	if actor.HasAny(authz.CapAdminOrHR, authz.CapFinance) {
		return s.repo.GetByOrg(actor.OrgID, limit, offset)
	}
	return s.repo.GetByOwner(actor.ProfileID, limit, offset)
}

// GetReceiptKey resolves the receipt blob key for an expense. The blob
// inherits the expense's visibility: the storage policy re-checks the key
// against the owning record, so a stale or forged key cannot widen access.
func (s *Service) GetReceiptKey(ctx context.Context, actor *authz.Actor, id int64) (string, error) {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return "", err
	}
	if exp.ReceiptKey == nil {
		return "", internal.ErrRecordNotFound
	}

	key, err := storage.ParseKey(*exp.ReceiptKey)
	if err != nil {
		return "", err
	}

	if decision := s.policy.Can(actor, authz.ActionRead, key, exp.resource()); !decision.Allowed {
		s.logger.Warn("expense receipt read denied",
			"expense_id", id,
			"actor_id", actor.UserID,
			"reason", decision.Reason)
		return "", authz.DeniedError(decision.Reason)
	}

	return key.String(), nil
}

// Transition applies one workflow action. The status precondition is
// re-evaluated by the guarded update, so two reviewers racing the same
// approval cannot both win; the loser gets ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, actor *authz.Actor, id int64, action string, notes *string) (*Expense, error) {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if actor.OrgID != exp.OrgID {
		return nil, authz.DeniedError(authz.DenyNotOrgMember)
	}

	from := exp.Status
	to, err := s.engine.Next(s.machine, from, action, actor, exp.OwnerProfileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	applied, err := s.repo.TransitionStatus(id, from, to, actor.ProfileID, notes, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		s.logger.Warn("expense transition lost precondition race",
			"expense_id", id,
			"from", from,
			"to", to)
		return nil, internal.ErrInvalidTransition
	}

	exp.Status = to
	exp.ReviewedBy = &actor.ProfileID
	exp.ReviewedAt = &now
	exp.ReviewerNotes = notes

	// Ledger posting fires only on the transition into paid. The guarded
	// update above observed submitted/approved -> paid exactly once, and the
	// poster itself is idempotent on the expense id.
	if to == workflow.StatusPaid {
		if err := s.poster.PostExpense(ctx, exp.OrgID, exp.ID, exp.AmountINR, actor.UserID, exp.Description); err != nil {
			return nil, err
		}
	}

	if label, ok := auditActions[action]; ok {
		if err := s.audit.Record(ctx, actor, audit.Params{
			Action:          label,
			EntityType:      authz.EntityExpense,
			EntityID:        exp.ID,
			TargetProfileID: &exp.OwnerProfileID,
			Metadata:        map[string]interface{}{"from": from, "to": to},
		}); err != nil {
			s.logger.Warn("audit record failed for expense transition", "expense_id", exp.ID, "error", err)
		}
	}

	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewTransitionEvent(authz.EntityExpense, exp.ID, exp.OrgID, from, to, actor.UserID))
	}

	s.logger.Info("expense transitioned",
		"expense_id", exp.ID,
		"from", from,
		"to", to,
		"actor_id", actor.UserID)

	return exp, nil
}

// DeleteExpense removes an unposted expense. Paid expenses are protected by
// the delete guard; only an active maintenance override lets one through.
func (s *Service) DeleteExpense(ctx context.Context, actor *authz.Actor, id int64) error {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.guard.CheckDelete(exp.IsPosted()); err != nil {
		s.logger.Warn("expense delete blocked by guard", "expense_id", id, "actor_id", actor.UserID)
		return err
	}

	if decision := s.gate.Can(actor, authz.ActionDelete, exp.resource()); !decision.Allowed {
		return authz.DeniedError(decision.Reason)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, actor, audit.Params{
		Action:          "expense_deleted",
		EntityType:      authz.EntityExpense,
		EntityID:        id,
		TargetProfileID: &exp.OwnerProfileID,
		Metadata:        map[string]interface{}{"status": exp.Status},
	}); err != nil {
		s.logger.Warn("audit record failed for expense delete", "expense_id", id, "error", err)
	}

	return nil
}
