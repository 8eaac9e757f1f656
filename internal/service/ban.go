package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// BanInput names the target and the ban duration.
type BanInput struct {
	UserType string `json:"user_type" validate:"required,oneof=client receptionist manager"`
	UserID   uint64 `json:"user_id" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=10"`
	Duration string `json:"duration" validate:"required,oneof=1day 1week 1month permanent"`
}

// BanService creates, lists and revokes bans.
type BanService struct {
	bans     BanStore
	accounts Directory
	now      Clock
}

// NewBanService returns a BanService using now for expiry.
func NewBanService(bans BanStore, accounts Directory, now Clock) *BanService {
	if now == nil {
		now = time.Now
	}
	return &BanService{bans: bans, accounts: accounts, now: now}
}

// Active returns the ban currently applying to ref, or nil.  Admins are
// never banned.
func (s *BanService) Active(ctx context.Context, ref model.OwnerRef) (*model.Ban, error) {
	if ref.Kind == model.KindAdmin {
		return nil, nil
	}
	b, err := s.bans.FindActive(ctx, ref, s.now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List shows admins every ban and managers the bans they issued.
func (s *BanService) List(ctx context.Context, actor model.OwnerRef, search string, page int) (Listing[model.Ban], error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return Listing[model.Ban]{}, ErrForbidden
	}
	filter := repository.BanFilter{BannedBy: access.ScopeOwner(actor), Search: search}
	items, total, err := s.bans.List(ctx, filter, repository.Page{Number: page})
	if err != nil {
		return Listing[model.Ban]{}, err
	}
	return listing(items, total, page), nil
}

// Create bans a principal the actor outranks.  Admins cannot be banned.
func (s *BanService) Create(ctx context.Context, actor model.OwnerRef, in BanInput) (*model.Ban, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	kind, err := model.ParseActorKind(in.UserType)
	if err != nil {
		return nil, invalid("user_type", "is invalid")
	}
	if !model.CanBan(actor.Kind, kind) {
		return nil, ErrForbidden
	}
	target, err := model.NewOwnerRef(kind, in.UserID)
	if err != nil {
		return nil, invalid("user_id", "is invalid")
	}
	ok, err := s.accounts.Exists(ctx, target, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("user_id", "selected user does not exist")
	}
	expires, permanent, err := model.BanDuration(in.Duration).Expiry(s.now().UTC())
	if err != nil {
		return nil, invalid("duration", "%s", err.Error())
	}
	b := &model.Ban{
		Banned:      target,
		BannedBy:    actor,
		Reason:      in.Reason,
		IsPermanent: permanent,
		ExpiresAt:   expires,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.bans.Create(ctx, b); err != nil {
		return nil, storeErr("ban", err)
	}
	return b, nil
}

// Revoke soft-deletes a ban; the issuer or an admin may do it.
func (s *BanService) Revoke(ctx context.Context, actor model.OwnerRef, id uint64) error {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return ErrForbidden
	}
	b, err := s.bans.GetByID(ctx, id)
	if err != nil {
		return storeErr("ban", err)
	}
	if err := access.RequireOwnerOrRole(b.BannedBy, actor, model.KindAdmin); err != nil {
		return err
	}
	return storeErr("ban", s.bans.Revoke(ctx, id))
}

// Targets lists the accounts of kind the actor may ban.
func (s *BanService) Targets(ctx context.Context, actor model.OwnerRef, kind string) ([]model.AccountSummary, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	k, err := model.ParseActorKind(kind)
	if err != nil {
		return nil, invalid("user_type", "is invalid")
	}
	if !model.CanBan(actor.Kind, k) {
		return nil, ErrForbidden
	}
	return s.accounts.Summaries(ctx, k)
}
