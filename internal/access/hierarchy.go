// Package access decides what an actor may do.  The role hierarchy is
// fixed: admin ⊇ manager ⊇ receptionist ⊇ client.
package access

import (
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ErrForbidden is returned when the actor is authenticated but lacks the
// role or ownership an operation needs.
var ErrForbidden = errors.New("forbidden")

var hierarchy = map[model.ActorKind][]model.ActorKind{
	model.KindAdmin:        {model.KindAdmin, model.KindManager, model.KindReceptionist, model.KindClient},
	model.KindManager:      {model.KindManager, model.KindReceptionist, model.KindClient},
	model.KindReceptionist: {model.KindReceptionist, model.KindClient},
	model.KindClient:       {model.KindClient},
}

// Grants returns the roles an actor of kind k can act as.
func Grants(k model.ActorKind) []model.ActorKind {
	out := make([]model.ActorKind, len(hierarchy[k]))
	copy(out, hierarchy[k])
	return out
}

// Authorize reports whether kind's hierarchy set intersects required.
func Authorize(kind model.ActorKind, required ...model.ActorKind) bool {
	for _, granted := range hierarchy[kind] {
		for _, r := range required {
			if granted == r {
				return true
			}
		}
	}
	return false
}

// RequireOwnerOrRole passes when actor owns the entity or holds the
// escalation role.  Every owner-scoped mutation goes through it.
func RequireOwnerOrRole(owner, actor model.OwnerRef, escalation model.ActorKind) error {
	if !actor.Kind.Valid() {
		return ErrForbidden
	}
	if owner.Is(actor) || Authorize(actor.Kind, escalation) {
		return nil
	}
	return ErrForbidden
}

// ScopeOwner returns the owner filter for scoped listings: nil when the
// actor sees everything (admin), the actor itself otherwise.
func ScopeOwner(actor model.OwnerRef) *model.OwnerRef {
	if actor.Kind == model.KindAdmin {
		return nil
	}
	a := actor
	return &a
}
