package authz

import (
	"log/slog"

	"github.com/peoplekit/hrcore/internal/directory"
)

// Resolver answers capability queries from directory facts. It reads through
// the privilege-elevated directory repository and never routes back through
// the Gate, which is what keeps Profile-table checks from recursing.
//
// Absence of evidence is denial: every lookup failure resolves to false.
type Resolver struct {
	dir    directory.Repository
	logger *slog.Logger
}

func NewResolver(dir directory.Repository, logger *slog.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger}
}

// ActorFor builds the per-request capability set for a principal. The org
// scope is the org of the principal's profile.
func (r *Resolver) ActorFor(userID int64) (*Actor, error) {
	profile, err := r.dir.GetProfileByUserID(userID)
	if err != nil {
		return nil, err
	}

	roles, err := r.dir.RolesForUser(userID, profile.OrgID)
	if err != nil {
		return nil, err
	}

	return NewActor(userID, profile.ID, profile.OrgID, profile.FullName, roles), nil
}

// HasCapability is the boolean query form. It never returns an error:
// missing profile or role data is a deny.
func (r *Resolver) HasCapability(userID, orgID int64, cap Capability) bool {
	profile, err := r.dir.GetProfileByUserID(userID)
	if err != nil || profile.OrgID != orgID || !profile.IsActive() {
		return false
	}
	if cap == CapOrgMember {
		return true
	}

	roles, err := r.dir.RolesForUser(userID, orgID)
	if err != nil {
		r.logger.Warn("role lookup failed, treating as deny", "user_id", userID, "org_id", orgID, "error", err)
		return false
	}

	actor := NewActor(userID, profile.ID, orgID, profile.FullName, roles)
	return actor.Has(cap)
}

// ManagerOf reports whether actorProfileID is the direct manager of
// targetProfileID. Exactly one level of the hierarchy is walked: a manager's
// manager gains no rights over the report.
func (r *Resolver) ManagerOf(actorProfileID, targetProfileID int64) bool {
	if actorProfileID == 0 || actorProfileID == targetProfileID {
		return false
	}

	target, err := r.dir.GetProfileByID(targetProfileID)
	if err != nil {
		return false
	}

	return target.ManagerID != nil && *target.ManagerID == actorProfileID
}
