package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// The store interfaces below are satisfied by the repository types; the
// services only see these.

// FloorStore persists floors.
type FloorStore interface {
	Create(ctx context.Context, f *model.Floor) error
	GetByID(ctx context.Context, id uint64) (*model.Floor, error)
	List(ctx context.Context, filter repository.FloorFilter, page repository.Page) ([]model.Floor, int, error)
	Options(ctx context.Context, owner *model.OwnerRef) ([]model.Floor, error)
	Stats(ctx context.Context, owner *model.OwnerRef) (model.FloorStats, error)
	Update(ctx context.Context, f *model.Floor) error
	Delete(ctx context.Context, id uint64) error
}

// RoomStore persists rooms and their availability flag.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	List(ctx context.Context, filter repository.RoomFilter, page repository.Page) ([]model.Room, int, error)
	ListAvailable(ctx context.Context, page repository.Page) ([]model.Room, int, error)
	Stats(ctx context.Context, owner *model.OwnerRef) (model.RoomStats, error)
	Update(ctx context.Context, rm *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore persists reservations and moves room holds with them.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation, hold bool) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	List(ctx context.Context, filter repository.ReservationFilter, page repository.Page) ([]model.Reservation, int, error)
	Update(ctx context.Context, res *model.Reservation, heldRoomID uint64, swap bool) error
	Cancel(ctx context.Context, id, roomID uint64, release bool) error
	Approve(ctx context.Context, id, roomID uint64) (bool, error)
	SetPaymentReference(ctx context.Context, id uint64, ref string) error
}

// BanStore persists bans.
type BanStore interface {
	FindActive(ctx context.Context, ref model.OwnerRef, now time.Time) (*model.Ban, error)
	List(ctx context.Context, filter repository.BanFilter, page repository.Page) ([]model.Ban, int, error)
	GetByID(ctx context.Context, id uint64) (*model.Ban, error)
	Create(ctx context.Context, b *model.Ban) error
	Revoke(ctx context.Context, id uint64) error
}

// StaffStore persists one kind of staff account.
type StaffStore interface {
	Kind() model.ActorKind
	Create(ctx context.Context, s *model.Staff) error
	GetByID(ctx context.Context, id uint64) (*model.Staff, error)
	List(ctx context.Context, filter repository.StaffFilter, page repository.Page) ([]model.Staff, int, error)
	Update(ctx context.Context, s *model.Staff) error
	SoftDelete(ctx context.Context, id uint64) error
	Taken(ctx context.Context, column, value string, exceptID uint64) (bool, error)
}

// ClientStore persists client accounts.
type ClientStore interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	List(ctx context.Context, search string, page repository.Page) ([]model.Client, int, error)
	Taken(ctx context.Context, column, value string) (bool, error)
}

// Directory resolves principals of any kind.
type Directory interface {
	Exists(ctx context.Context, ref model.OwnerRef, includeTrashed bool) (bool, error)
	FindCredentials(ctx context.Context, kind model.ActorKind, email string) (*model.Credentials, error)
	Principal(ctx context.Context, ref model.OwnerRef) (*model.Principal, error)
	Summaries(ctx context.Context, kind model.ActorKind) ([]model.AccountSummary, error)
}

// TokenStore persists refresh tokens by hash.
type TokenStore interface {
	StoreRefresh(ctx context.Context, t model.RefreshToken) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeSession(ctx context.Context, sessionID string) error
}

// CountryStore lists and checks country names.
type CountryStore interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// Notifier delivers a templated message to a principal.  Delivery is
// fire-and-forget from the caller's point of view.
type Notifier interface {
	Notify(ctx context.Context, recipient model.OwnerRef, template string, payload any) error
}

// Avatars stores uploaded profile images under dir and returns the
// stored path.  Remove is best-effort; callers log its error.
type Avatars interface {
	Save(ctx context.Context, data []byte, dir string) (string, error)
	Remove(ctx context.Context, path string) error
}

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time

// Meta describes one page of a listing.
type Meta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Listing is the paginated envelope every list operation returns.
type Listing[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func listing[T any](items []T, total, page int) Listing[T] {
	if page < 1 {
		page = 1
	}
	if items == nil {
		items = []T{}
	}
	return Listing[T]{Data: items, Meta: Meta{Page: page, PerPage: repository.PerPage, Total: total}}
}
