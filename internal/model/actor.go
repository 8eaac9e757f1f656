package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActorKind names one of the four principal tables.  The set is closed:
// values outside it are rejected by ParseActorKind and NewOwnerRef.
type ActorKind string

const (
	KindAdmin        ActorKind = "admin"
	KindManager      ActorKind = "manager"
	KindReceptionist ActorKind = "receptionist"
	KindClient       ActorKind = "client"
)

// ActorKinds lists every kind in resolution priority order.
var ActorKinds = []ActorKind{KindAdmin, KindManager, KindReceptionist, KindClient}

// ErrInvalidOwner is returned when an owner reference is built from an
// unknown kind or a zero id.
var ErrInvalidOwner = errors.New("invalid owner reference")

// Valid reports whether k is one of the four actor kinds.
func (k ActorKind) Valid() bool {
	switch k {
	case KindAdmin, KindManager, KindReceptionist, KindClient:
		return true
	}
	return false
}

// IsStaff is true for every kind except client.
func (k ActorKind) IsStaff() bool { return k.Valid() && k != KindClient }

// ParseActorKind normalises s and checks it against the closed set.
func ParseActorKind(s string) (ActorKind, error) {
	k := ActorKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidOwner, s)
	}
	return k, nil
}

// KindForEmail picks the credential store from the login identifier's
// domain.  Virtual staff identifiers live under <role>.com; anything else
// is a client.
func KindForEmail(email string) ActorKind {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return KindClient
	}
	switch strings.ToLower(email[at+1:]) {
	case "admin.com":
		return KindAdmin
	case "manager.com":
		return KindManager
	case "receptionist.com":
		return KindReceptionist
	}
	return KindClient
}

// OwnerRef is the polymorphic (kind, id) pair stored next to floors, rooms,
// reservations, bans, receptionists and clients.  It is a weak reference:
// the referenced row may be soft-deleted.
type OwnerRef struct {
	Kind ActorKind `json:"kind"`
	ID   uint64    `json:"id"`
}

// NewOwnerRef validates kind and id before building a reference.
func NewOwnerRef(kind ActorKind, id uint64) (OwnerRef, error) {
	if !kind.Valid() {
		return OwnerRef{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidOwner, kind)
	}
	if id == 0 {
		return OwnerRef{}, fmt.Errorf("%w: zero id", ErrInvalidOwner)
	}
	return OwnerRef{Kind: kind, ID: id}, nil
}

// MustOwnerRef is NewOwnerRef for call sites with constant kinds.
func MustOwnerRef(kind ActorKind, id uint64) OwnerRef {
	ref, err := NewOwnerRef(kind, id)
	if err != nil {
		panic(err)
	}
	return ref
}

// ParseOwnerRef reads the "kind:id" form produced by String.
func ParseOwnerRef(s string) (OwnerRef, error) {
	kindPart, idPart, ok := strings.Cut(s, ":")
	if !ok {
		return OwnerRef{}, fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	kind, err := ParseActorKind(kindPart)
	if err != nil {
		return OwnerRef{}, err
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		return OwnerRef{}, fmt.Errorf("%w: %q", ErrInvalidOwner, s)
	}
	return NewOwnerRef(kind, id)
}

// IsZero reports whether r is the empty reference (no actor).
func (r OwnerRef) IsZero() bool { return r.Kind == "" && r.ID == 0 }

// Is compares two references by kind and id.
func (r OwnerRef) Is(other OwnerRef) bool { return r.Kind == other.Kind && r.ID == other.ID }

// String renders the reference as "kind:id".
func (r OwnerRef) String() string {
	return string(r.Kind) + ":" + strconv.FormatUint(r.ID, 10)
}
