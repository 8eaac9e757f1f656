package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// RoomQuery filters a room listing.
type RoomQuery struct {
	Search    string
	FloorID   uint64
	ManagerID uint64
	Page      int
}

// RoomInput carries the price in major units; it is stored in minor
// units.  Number is ignored on update.
type RoomInput struct {
	Name      string  `json:"name" validate:"required,min=2,max=255"`
	Number    string  `json:"number" validate:"omitempty,min=2,max=32"`
	Capacity  int     `json:"capacity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"min=0,max=1000000"`
	FloorID   uint64  `json:"floor_id" validate:"required"`
	ManagerID uint64  `json:"manager_id"`
}

// RoomView is a room as listed, with its price rendered.
type RoomView struct {
	model.Room
	PriceDisplay string `json:"price_display"`
}

// RoomListing is a page of rooms with totals.
type RoomListing struct {
	Listing[RoomView]
	Stats model.RoomStats `json:"stats"`
}

// RoomService manages rooms.
type RoomService struct {
	rooms    RoomStore
	floors   FloorStore
	accounts Directory
}

// NewRoomService returns a RoomService.
func NewRoomService(rooms RoomStore, floors FloorStore, accounts Directory) *RoomService {
	return &RoomService{rooms: rooms, floors: floors, accounts: accounts}
}

func views(rooms []model.Room) []RoomView {
	out := make([]RoomView, len(rooms))
	for i, rm := range rooms {
		out[i] = RoomView{Room: rm, PriceDisplay: rm.PriceDisplay()}
	}
	return out
}

// List pages rooms; managers see only their own.
func (s *RoomService) List(ctx context.Context, actor model.OwnerRef, q RoomQuery) (RoomListing, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return RoomListing{}, ErrForbidden
	}
	scope := access.ScopeOwner(actor)
	filter := repository.RoomFilter{Owner: scope, FloorID: q.FloorID, Search: q.Search}
	if scope == nil && q.ManagerID > 0 {
		m := model.OwnerRef{Kind: model.KindManager, ID: q.ManagerID}
		filter.Manager = &m
	}
	rooms, total, err := s.rooms.List(ctx, filter, repository.Page{Number: q.Page})
	if err != nil {
		return RoomListing{}, err
	}
	stats, err := s.rooms.Stats(ctx, scope)
	if err != nil {
		return RoomListing{}, err
	}
	return RoomListing{Listing: listing(views(rooms), total, q.Page), Stats: stats}, nil
}

// Available lists rooms a client can book right now.
func (s *RoomService) Available(ctx context.Context, actor model.OwnerRef, page int) (Listing[RoomView], error) {
	if !access.Authorize(actor.Kind, model.KindClient) {
		return Listing[RoomView]{}, ErrForbidden
	}
	rooms, total, err := s.rooms.ListAvailable(ctx, repository.Page{Number: page})
	if err != nil {
		return Listing[RoomView]{}, err
	}
	return listing(views(rooms), total, page), nil
}

// Get returns one room the actor may manage.
func (s *RoomService) Get(ctx context.Context, actor model.OwnerRef, id uint64) (*RoomView, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("room", err)
	}
	if err := access.RequireOwnerOrRole(rm.Owner, actor, model.KindAdmin); err != nil {
		return nil, err
	}
	return &RoomView{Room: *rm, PriceDisplay: rm.PriceDisplay()}, nil
}

// Create adds a room on one of the actor's floors.
func (s *RoomService) Create(ctx context.Context, actor model.OwnerRef, in RoomInput) (*model.Room, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if len(in.Number) < 2 {
		return nil, invalid("number", "must be at least 2 characters")
	}
	if err := s.checkFloor(ctx, actor, in.FloorID); err != nil {
		return nil, err
	}
	price, err := model.MinorUnits(in.Price)
	if err != nil {
		return nil, invalid("price", "is out of range")
	}
	owner, err := delegate(ctx, s.accounts, actor, in.ManagerID, actor)
	if err != nil {
		return nil, err
	}
	rm := &model.Room{
		Name:     in.Name,
		Number:   in.Number,
		Capacity: in.Capacity,
		Price:    price,
		FloorID:  in.FloorID,
		Owner:    owner,
	}
	if err := s.rooms.Create(ctx, rm); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("number", "has already been taken")
		}
		return nil, storeErr("room", err)
	}
	return rm, nil
}

// Update changes a room.  The number is fixed after creation.
func (s *RoomService) Update(ctx context.Context, actor model.OwnerRef, id uint64, in RoomInput) (*model.Room, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("room", err)
	}
	if err := access.RequireOwnerOrRole(rm.Owner, actor, model.KindAdmin); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.checkFloor(ctx, actor, in.FloorID); err != nil {
		return nil, err
	}
	price, err := model.MinorUnits(in.Price)
	if err != nil {
		return nil, invalid("price", "is out of range")
	}
	owner, err := delegate(ctx, s.accounts, actor, in.ManagerID, rm.Owner)
	if err != nil {
		return nil, err
	}
	rm.Name = in.Name
	rm.Capacity = in.Capacity
	rm.Price = price
	rm.FloorID = in.FloorID
	rm.Owner = owner
	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, storeErr("room", err)
	}
	return rm, nil
}

// Delete removes a room no reservation references.
func (s *RoomService) Delete(ctx context.Context, actor model.OwnerRef, id uint64) error {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return ErrForbidden
	}
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return storeErr("room", err)
	}
	if err := access.RequireOwnerOrRole(rm.Owner, actor, model.KindAdmin); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("room %s has reservations: %w", rm.Number, ErrConflict)
		}
		return storeErr("room", err)
	}
	return nil
}

// checkFloor requires the floor to exist and, for non-admins, to belong
// to the actor.
func (s *RoomService) checkFloor(ctx context.Context, actor model.OwnerRef, floorID uint64) error {
	f, err := s.floors.GetByID(ctx, floorID)
	if errors.Is(err, repository.ErrNotFound) {
		return invalid("floor_id", "selected floor does not exist")
	}
	if err != nil {
		return err
	}
	return access.RequireOwnerOrRole(f.Owner, actor, model.KindAdmin)
}
