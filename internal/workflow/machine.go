package workflow

import (
	"log/slog"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
)

// Statuses form one closed enumeration shared across entity machines.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusPublished       = "published"
	StatusPending         = "pending"
	StatusSubmitted       = "submitted"
	StatusApproved        = "approved"
	StatusRejected        = "rejected"
	StatusPaid            = "paid"
)

// Transition action labels.
const (
	ActionSubmit  = "submit"
	ActionPublish = "publish"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionPay     = "pay"
)

// Requirement states who may trigger a transition. Capabilities and the
// manager relation are alternatives; OwnerOnly excludes everyone else.
type Requirement struct {
	OwnerOnly      bool
	ManagerOfOwner bool
	Capabilities   []authz.Capability
}

type Transition struct {
	Action string
	From   string
	To     string
	By     Requirement
}

// Machine is the explicit per-entity transition table: current state x
// action -> next state plus the requirement gating it. It is a plain data
// structure, testable with no storage behind it.
type Machine struct {
	Entity      string
	Initial     string
	transitions map[string]map[string]Transition
	terminal    map[string]bool
}

func NewMachine(entity, initial string, transitions []Transition) *Machine {
	m := &Machine{
		Entity:      entity,
		Initial:     initial,
		transitions: make(map[string]map[string]Transition),
		terminal:    make(map[string]bool),
	}

	states := make(map[string]bool)
	for _, t := range transitions {
		if m.transitions[t.From] == nil {
			m.transitions[t.From] = make(map[string]Transition)
		}
		m.transitions[t.From][t.Action] = t
		states[t.From] = true
		states[t.To] = true
	}
	for s := range states {
		if len(m.transitions[s]) == 0 {
			m.terminal[s] = true
		}
	}
	return m
}

// IsTerminal reports whether no transition leaves the status.
func (m *Machine) IsTerminal(status string) bool {
	return m.terminal[status]
}

// Lookup returns the transition for (from, action) if one is defined.
func (m *Machine) Lookup(from, action string) (Transition, bool) {
	t, ok := m.transitions[from][action]
	return t, ok
}

// Engine validates transitions against a machine and the actor's
// capabilities. It decides; the entity repository applies, using the
// from-status as a compare-and-set precondition.
type Engine struct {
	resolver *authz.Resolver
	logger   *slog.Logger
}

func NewEngine(resolver *authz.Resolver, logger *slog.Logger) *Engine {
	return &Engine{resolver: resolver, logger: logger}
}

// Next resolves the target status for an action from the current status,
// checking that the actor is allowed to trigger it. Undefined (status,
// action) pairs are ErrInvalidTransition; permission failures are typed
// denials, never panics.
func (e *Engine) Next(m *Machine, current, action string, actor *authz.Actor, ownerProfileID int64) (string, error) {
	t, ok := m.Lookup(current, action)
	if !ok {
		e.logger.Warn("transition not defined",
			"entity", m.Entity,
			"status", current,
			"action", action)
		return "", internal.ErrInvalidTransition
	}

	if t.By.OwnerOnly {
		if actor == nil || actor.ProfileID != ownerProfileID {
			return "", authz.DeniedError(authz.DenyNotOwner)
		}
		return t.To, nil
	}

	if actor != nil {
		if actor.HasAny(t.By.Capabilities...) {
			return t.To, nil
		}
		if t.By.ManagerOfOwner && e.resolver.ManagerOf(actor.ProfileID, ownerProfileID) {
			return t.To, nil
		}
	}

	return "", authz.DeniedError(authz.DenyWrongRole)
}
