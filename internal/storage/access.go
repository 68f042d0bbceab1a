package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peoplekit/hrcore/internal"
	"github.com/peoplekit/hrcore/internal/authz"
)

// Attachments live in object storage under owner-prefixed keys so a key
// alone names its owning entity type and profile:
//
//	<entity_type>/<owner_profile_id>/<filename>
//
// Access to a blob is never decided from the key; the key locates the
// owning entity and the gate decides with the entity's own rule.
type ObjectKey struct {
	EntityType     string
	OwnerProfileID int64
	Filename       string
}

func (k ObjectKey) String() string {
	return fmt.Sprintf("%s/%d/%s", k.EntityType, k.OwnerProfileID, k.Filename)
}

func NewObjectKey(entityType string, ownerProfileID int64, filename string) (ObjectKey, error) {
	if ownerProfileID == 0 {
		return ObjectKey{}, internal.NewValidationError("owner profile is required for an object key", internal.ErrCodeValidationFailed)
	}
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return ObjectKey{}, internal.NewValidationError("invalid attachment filename", internal.ErrCodeValidationFailed)
	}
	switch entityType {
	case authz.EntityMemo, authz.EntityExpense, authz.EntityForm16:
	default:
		return ObjectKey{}, internal.NewValidationError("entity type does not carry attachments", internal.ErrCodeValidationFailed)
	}
	return ObjectKey{EntityType: entityType, OwnerProfileID: ownerProfileID, Filename: filename}, nil
}

func ParseKey(raw string) (ObjectKey, error) {
	parts := strings.SplitN(raw, "/", 3)
	if len(parts) != 3 {
		return ObjectKey{}, internal.NewValidationError("malformed object key", internal.ErrCodeValidationFailed)
	}
	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ownerID == 0 {
		return ObjectKey{}, internal.NewValidationError("malformed object key owner segment", internal.ErrCodeValidationFailed)
	}
	return NewObjectKey(parts[0], ownerID, parts[2])
}

// AccessPolicy gates blob operations with the owning entity's access rule.
// The blob inherits the entity's visibility exactly: whoever may read the
// expense may fetch its receipt, nobody else.
type AccessPolicy struct {
	gate *authz.Gate
}

func NewAccessPolicy(gate *authz.Gate) *AccessPolicy {
	return &AccessPolicy{gate: gate}
}

// Can checks a blob operation against the owning entity. The caller supplies
// the entity's resource view; the key must agree with it on type and owner,
// which defeats a key forged to point at someone else's folder.
func (p *AccessPolicy) Can(actor *authz.Actor, action authz.Action, key ObjectKey, owning authz.Resource) authz.Decision {
	if key.EntityType != owning.Type || key.OwnerProfileID != owning.OwnerProfileID {
		return authz.Deny(authz.DenyNotOwner)
	}
	return p.gate.Can(actor, action, owning)
}
