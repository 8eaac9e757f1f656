package model

import (
	"errors"
	"time"
)

// Ban blocks a client, receptionist or manager from using the system.
// Exactly one of IsPermanent and ExpiresAt is set.  Revoking a ban sets
// DeletedAt; the row is kept.
type Ban struct {
	ID          uint64     `json:"id"`
	Banned      OwnerRef   `json:"banned"`
	BannedBy    OwnerRef   `json:"banned_by"`
	Reason      string     `json:"reason"`
	IsPermanent bool       `json:"is_permanent"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	BannedName   string `json:"banned_name,omitempty"`
	BannedByName string `json:"banned_by_name,omitempty"`
}

// BanDuration is the caller-facing length of a ban.
type BanDuration string

const (
	BanOneDay    BanDuration = "1day"
	BanOneWeek   BanDuration = "1week"
	BanOneMonth  BanDuration = "1month"
	BanPermanent BanDuration = "permanent"
)

var ErrUnknownDuration = errors.New("unknown ban duration")

// BanExpiryLayout formats an expiry as "January 2, 2006 at 3:04 PM".
const BanExpiryLayout = "January 2, 2006 at 3:04 PM"

// Expiry maps a duration onto the (expires_at, is_permanent) pair.
func (d BanDuration) Expiry(now time.Time) (*time.Time, bool, error) {
	var exp time.Time
	switch d {
	case BanPermanent:
		return nil, true, nil
	case BanOneDay:
		exp = now.AddDate(0, 0, 1)
	case BanOneWeek:
		exp = now.AddDate(0, 0, 7)
	case BanOneMonth:
		exp = now.AddDate(0, 1, 0)
	default:
		return nil, false, ErrUnknownDuration
	}
	return &exp, false, nil
}

// IsActive reports whether the ban still applies at now.
func (b Ban) IsActive(now time.Time) bool {
	if b.DeletedAt != nil {
		return false
	}
	if b.IsPermanent || b.ExpiresAt == nil {
		return true
	}
	return b.ExpiresAt.After(now)
}

// Message is the notice shown to the banned actor.
func (b Ban) Message() string {
	msg := "Your account has been banned. Reason: " + b.Reason
	if !b.IsPermanent && b.ExpiresAt != nil {
		return msg + " This ban will expire on " + b.ExpiresAt.UTC().Format(BanExpiryLayout) + "."
	}
	return msg + " This is a permanent ban."
}

// CanBan encodes who may ban whom: admins ban anyone bannable, managers
// ban clients and receptionists.  Admins themselves cannot be banned.
func CanBan(actor, target ActorKind) bool {
	if target == KindAdmin || !target.Valid() {
		return false
	}
	switch actor {
	case KindAdmin:
		return true
	case KindManager:
		return target == KindClient || target == KindReceptionist
	}
	return false
}
