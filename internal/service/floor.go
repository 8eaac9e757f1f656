package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// FloorQuery selects a page of floors.  ManagerID is honoured for admins
// only.
type FloorQuery struct {
	Search    string
	ManagerID uint64
	Page      int
}

// FloorInput is the create/update payload.  ManagerID lets an admin
// delegate the floor to a manager.
type FloorInput struct {
	Name      string `json:"name" validate:"required,min=3,max=255"`
	ManagerID uint64 `json:"manager_id"`
}

// FloorListing adds the scoped counters to a page of floors.
type FloorListing struct {
	Listing[model.Floor]
	Stats model.FloorStats `json:"stats"`
}

// FloorService manages floors.
type FloorService struct {
	floors   FloorStore
	accounts Directory
}

// NewFloorService returns a FloorService.
func NewFloorService(floors FloorStore, accounts Directory) *FloorService {
	return &FloorService{floors: floors, accounts: accounts}
}

// List pages floors; managers see only their own.
func (s *FloorService) List(ctx context.Context, actor model.OwnerRef, q FloorQuery) (FloorListing, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return FloorListing{}, ErrForbidden
	}
	scope := access.ScopeOwner(actor)
	filter := repository.FloorFilter{Owner: scope, Search: q.Search}
	if scope == nil && q.ManagerID > 0 {
		m := model.OwnerRef{Kind: model.KindManager, ID: q.ManagerID}
		filter.Manager = &m
	}
	floors, total, err := s.floors.List(ctx, filter, repository.Page{Number: q.Page})
	if err != nil {
		return FloorListing{}, err
	}
	stats, err := s.floors.Stats(ctx, scope)
	if err != nil {
		return FloorListing{}, err
	}
	return FloorListing{Listing: listing(floors, total, q.Page), Stats: stats}, nil
}

// Options lists the floors the actor may attach rooms to.
func (s *FloorService) Options(ctx context.Context, actor model.OwnerRef) ([]model.Floor, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	return s.floors.Options(ctx, access.ScopeOwner(actor))
}

// Create adds a floor owned by the actor or by the manager an admin names.
func (s *FloorService) Create(ctx context.Context, actor model.OwnerRef, in FloorInput) (*model.Floor, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	owner, err := delegate(ctx, s.accounts, actor, in.ManagerID, actor)
	if err != nil {
		return nil, err
	}
	f := &model.Floor{Name: in.Name, Owner: owner}
	if err := s.floors.Create(ctx, f); err != nil {
		return nil, storeErr("floor", err)
	}
	return f, nil
}

// Update renames a floor and may reassign its manager.
func (s *FloorService) Update(ctx context.Context, actor model.OwnerRef, id uint64, in FloorInput) (*model.Floor, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	f, err := s.floors.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("floor", err)
	}
	if err := access.RequireOwnerOrRole(f.Owner, actor, model.KindAdmin); err != nil {
		return nil, err
	}
	if err := check(in); err != nil {
		return nil, err
	}
	owner, err := delegate(ctx, s.accounts, actor, in.ManagerID, f.Owner)
	if err != nil {
		return nil, err
	}
	f.Name = in.Name
	f.Owner = owner
	if err := s.floors.Update(ctx, f); err != nil {
		return nil, storeErr("floor", err)
	}
	return f, nil
}

// Delete removes an empty floor.
func (s *FloorService) Delete(ctx context.Context, actor model.OwnerRef, id uint64) error {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return ErrForbidden
	}
	f, err := s.floors.GetByID(ctx, id)
	if err != nil {
		return storeErr("floor", err)
	}
	if err := access.RequireOwnerOrRole(f.Owner, actor, model.KindAdmin); err != nil {
		return err
	}
	if err := s.floors.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("floor %s still has rooms: %w", f.Number, ErrConflict)
		}
		return storeErr("floor", err)
	}
	return nil
}

// delegate resolves the owner a write should carry.  Only admins may
// name a manager; everyone else keeps fallback.
func delegate(ctx context.Context, accounts Directory, actor model.OwnerRef, managerID uint64, fallback model.OwnerRef) (model.OwnerRef, error) {
	if actor.Kind != model.KindAdmin || managerID == 0 {
		return fallback, nil
	}
	ref, err := model.NewOwnerRef(model.KindManager, managerID)
	if err != nil {
		return model.OwnerRef{}, invalid("manager_id", "is invalid")
	}
	ok, err := accounts.Exists(ctx, ref, false)
	if err != nil {
		return model.OwnerRef{}, err
	}
	if !ok {
		return model.OwnerRef{}, invalid("manager_id", "selected manager does not exist")
	}
	return ref, nil
}
