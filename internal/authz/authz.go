package authz

import (
	"context"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/directory"
)

// Capability is a boolean question that can be asked about a principal
// within one organization. Composite capabilities expand to role unions.
type Capability string

const (
	CapAdmin            Capability = "admin"
	CapHR               Capability = "hr"
	CapFinance          Capability = "finance"
	CapManager          Capability = "manager"
	CapAdminOrHR        Capability = "admin_or_hr"
	CapAdminOrFinance   Capability = "admin_or_finance"
	CapAdminHROrManager Capability = "admin_hr_or_manager"
	CapOrgMember        Capability = "org_member"
)

// capabilityRoles maps each capability to the roles that satisfy it.
var capabilityRoles = map[Capability][]string{
	CapAdmin:            {directory.RoleAdmin},
	CapHR:               {directory.RoleHR},
	CapFinance:          {directory.RoleFinance},
	CapManager:          {directory.RoleManager},
	CapAdminOrHR:        {directory.RoleAdmin, directory.RoleHR},
	CapAdminOrFinance:   {directory.RoleAdmin, directory.RoleFinance},
	CapAdminHROrManager: {directory.RoleAdmin, directory.RoleHR, directory.RoleManager},
}

// Action names the kind of access being requested on a record.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DenyReason tags a negative decision for observability. Denial is a
// first-class result, never an exception.
type DenyReason string

const (
	DenyNotOwner     DenyReason = "NOT_OWNER"
	DenyWrongRole    DenyReason = "WRONG_ROLE"
	DenyWrongState   DenyReason = "WRONG_STATE"
	DenyNotOrgMember DenyReason = "NOT_ORG_MEMBER"
)

type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
}

func Permit() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// DeniedError converts a deny decision into the error surfaced to callers.
func DeniedError(reason DenyReason) *internal.AppError {
	return internal.NewForbiddenError("access denied", internal.ErrCodeAccessDenied).
		WithDetails(map[string]string{"reason": string(reason)})
}

// Actor is the capability set computed once per request for a principal in
// one organization. The Gate and Workflow Engine test set membership instead
// of re-deriving role facts.
type Actor struct {
	UserID    int64
	ProfileID int64
	OrgID     int64
	Name      string
	roles     map[string]struct{}
}

func NewActor(userID, profileID, orgID int64, name string, roles []string) *Actor {
	set := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return &Actor{
		UserID:    userID,
		ProfileID: profileID,
		OrgID:     orgID,
		Name:      name,
		roles:     set,
	}
}

func (a *Actor) HasRole(role string) bool {
	_, ok := a.roles[role]
	return ok
}

// Has reports whether the actor satisfies the capability. Org membership is
// derived from having a profile in the org, not from a role row.
func (a *Actor) Has(cap Capability) bool {
	if cap == CapOrgMember {
		return a.ProfileID != 0
	}
	for _, role := range capabilityRoles[cap] {
		if a.HasRole(role) {
			return true
		}
	}
	return false
}

func (a *Actor) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if a.Has(c) {
			return true
		}
	}
	return false
}

// Resource describes the record an access decision is about, detached from
// any concrete entity type so the Gate stays entity-agnostic.
type Resource struct {
	Type           string
	ID             int64
	OwnerProfileID int64
	OrgID          int64
	Status         string
}

// Entity type labels shared by the Gate, Workflow Engine and Audit Logger.
const (
	EntityMemo                 = "memo"
	EntityLeaveRequest         = "leave_request"
	EntityAttendanceCorrection = "attendance_correction"
	EntityExpense              = "expense"
	EntityProfileChangeRequest = "profile_change_request"
	EntityForm16               = "form16"
)

type actorCtxKey struct{}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey{}).(*Actor)
	return actor, ok
}
