package model

import (
	"fmt"
	"time"
)

// DefaultImage is the avatar path used when a staff member uploads none.
const DefaultImage = "images/default.jpg"

// Principal is the resolved actor behind a session together with the
// fields shown back to it.
type Principal struct {
	Ref   OwnerRef `json:"actor"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// Credentials is the login view of any principal table.
type Credentials struct {
	Ref          OwnerRef
	Name         string
	Email        string
	PasswordHash string
}

// Staff is a manager or receptionist account.  Email is the system-issued
// virtual login identifier; ActualEmail is the person's real address.
//
// Fields:
//  Kind        – KindManager or KindReceptionist.
//  NationalID  – 14-digit national identifier, unique per kind.
//  Image       – blob path of the avatar.
//  CreatedBy   – admin (managers) or admin/manager (receptionists).
//  Editable    – set on listings when the caller may modify the row.
type Staff struct {
	ID           uint64     `json:"id"`
	Kind         ActorKind  `json:"kind"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	ActualEmail  string     `json:"actual_email"`
	PasswordHash string     `json:"-"`
	NationalID   string     `json:"national_id"`
	Image        string     `json:"image"`
	CreatedBy    OwnerRef   `json:"created_by"`
	Editable     bool       `json:"editable"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Ref returns the staff member as an owner reference.
func (s Staff) Ref() OwnerRef { return OwnerRef{Kind: s.Kind, ID: s.ID} }

// VirtualEmail builds the role-namespaced login identifier for a staff id.
func VirtualEmail(kind ActorKind, id uint64) string {
	return fmt.Sprintf("%s.%d@%s.com", kind, id, kind)
}

// Client is a hotel guest account.
type Client struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	NationalID   string     `json:"national_id"`
	Country      string     `json:"country"`
	Gender       string     `json:"gender"`
	Image        *string    `json:"image,omitempty"`
	CreatedBy    OwnerRef   `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// AccountSummary is the compact id/name/email triple used by pickers.
type AccountSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the raw token is stored, bound to the session it was
// issued for.
type RefreshToken struct {
	ID        uint64
	Owner     OwnerRef
	SessionID string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
