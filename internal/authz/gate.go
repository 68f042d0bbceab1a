package authz

import (
	"log/slog"
)

// Rule is the fixed access table for one entity type. Evaluation precedence
// in Gate.Can: org membership, then ownership, then role-qualified grants.
type Rule struct {
	// OwnerCanCreate is true for entities submitted by their owner. Form16
	// records are generated by finance, not their subject.
	OwnerCanCreate bool

	// OwnerUpdateStatuses lists the statuses in which the owner may still
	// edit the record. Empty means owners never update directly.
	OwnerUpdateStatuses []string

	// ReadCapabilities grants org-scoped read regardless of ownership.
	ReadCapabilities []Capability

	// ManagerCanRead grants read to the direct manager of the owner.
	ManagerCanRead bool

	// CreateCapability grants create for non-owner submitters (zero value
	// means owners only).
	CreateCapability Capability

	// UpdateCapability grants post-state updates for audit correction.
	// Workflow transitions are not updates; they go through the engine.
	UpdateCapability Capability

	// DeleteCapability grants structural deletion, still subject to the
	// delete-prevention guard for posted records.
	DeleteCapability Capability
}

// Gate decides (principal, action, record) triples. It composes Resolver
// outputs with ownership and workflow-state checks, and never mutates state:
// a permitted write is always paired with a Workflow Engine transition.
type Gate struct {
	resolver *Resolver
	rules    map[string]Rule
	logger   *slog.Logger
}

func NewGate(resolver *Resolver, logger *slog.Logger) *Gate {
	return &Gate{
		resolver: resolver,
		rules:    defaultRules(),
		logger:   logger,
	}
}

func defaultRules() map[string]Rule {
	return map[string]Rule{
		EntityMemo: {
			OwnerCanCreate:      true,
			OwnerUpdateStatuses: []string{"draft"},
			ReadCapabilities:    []Capability{CapAdminOrHR, CapManager},
			ManagerCanRead:      true,
			UpdateCapability:    CapAdminOrHR,
			DeleteCapability:    CapAdminOrHR,
		},
		EntityLeaveRequest: {
			OwnerCanCreate:      true,
			OwnerUpdateStatuses: []string{"pending"},
			ReadCapabilities:    []Capability{CapAdminOrHR},
			ManagerCanRead:      true,
			UpdateCapability:    CapAdminOrHR,
			DeleteCapability:    CapAdminOrHR,
		},
		EntityAttendanceCorrection: {
			OwnerCanCreate:      true,
			OwnerUpdateStatuses: []string{"pending"},
			ReadCapabilities:    []Capability{CapAdminOrHR},
			ManagerCanRead:      true,
			UpdateCapability:    CapAdminOrHR,
			DeleteCapability:    CapAdminOrHR,
		},
		EntityExpense: {
			OwnerCanCreate:      true,
			OwnerUpdateStatuses: []string{"submitted"},
			ReadCapabilities:    []Capability{CapAdminOrHR, CapFinance},
			ManagerCanRead:      true,
			UpdateCapability:    CapAdminOrHR,
			DeleteCapability:    CapAdmin,
		},
		EntityProfileChangeRequest: {
			OwnerCanCreate:      true,
			OwnerUpdateStatuses: []string{"pending"},
			ReadCapabilities:    []Capability{CapAdminOrHR},
			ManagerCanRead:      true,
			UpdateCapability:    CapAdminOrHR,
			DeleteCapability:    CapAdminOrHR,
		},
		EntityForm16: {
			OwnerCanCreate:   false,
			ReadCapabilities: []Capability{CapAdminOrHR, CapFinance},
			CreateCapability: CapAdminOrFinance,
			UpdateCapability: CapAdminOrFinance,
			DeleteCapability: CapAdmin,
		},
	}
}

// Can evaluates the rule table for the resource's entity type. The returned
// Decision is a first-class result; callers convert a deny into a typed
// forbidden error via DeniedError.
func (g *Gate) Can(actor *Actor, action Action, res Resource) Decision {
	if actor == nil {
		return Deny(DenyNotOrgMember)
	}

	rule, ok := g.rules[res.Type]
	if !ok {
		g.logger.Warn("no access rule for entity type, denying", "entity_type", res.Type)
		return Deny(DenyWrongRole)
	}

	if actor.OrgID != res.OrgID {
		return Deny(DenyNotOrgMember)
	}

	isOwner := actor.ProfileID != 0 && actor.ProfileID == res.OwnerProfileID

	switch action {
	case ActionRead:
		if isOwner {
			return Permit()
		}
		if actor.HasAny(rule.ReadCapabilities...) {
			return Permit()
		}
		if rule.ManagerCanRead && g.resolver.ManagerOf(actor.ProfileID, res.OwnerProfileID) {
			return Permit()
		}
		return Deny(DenyNotOwner)

	case ActionCreate:
		if isOwner && rule.OwnerCanCreate {
			return Permit()
		}
		if rule.CreateCapability != "" && actor.Has(rule.CreateCapability) {
			return Permit()
		}
		if !rule.OwnerCanCreate {
			return Deny(DenyWrongRole)
		}
		return Deny(DenyNotOwner)

	case ActionUpdate:
		if isOwner {
			for _, s := range rule.OwnerUpdateStatuses {
				if res.Status == s {
					return Permit()
				}
			}
			// Owners lose edit rights once review has started.
			if rule.UpdateCapability != "" && actor.Has(rule.UpdateCapability) {
				return Permit()
			}
			return Deny(DenyWrongState)
		}
		if rule.UpdateCapability != "" && actor.Has(rule.UpdateCapability) {
			return Permit()
		}
		return Deny(DenyWrongRole)

	case ActionDelete:
		if rule.DeleteCapability != "" && actor.Has(rule.DeleteCapability) {
			return Permit()
		}
		if isOwner {
			for _, s := range rule.OwnerUpdateStatuses {
				if res.Status == s {
					return Permit()
				}
			}
			return Deny(DenyWrongState)
		}
		return Deny(DenyWrongRole)
	}

	return Deny(DenyWrongRole)
}
