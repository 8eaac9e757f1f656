package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// StaffInput is the manager/receptionist payload.  Email is the person's
// actual address; the login email is issued by the system.  Password is
// required on create and optional on update.
type StaffInput struct {
	Name       string `json:"name" validate:"required,max=255,alphaspace"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"omitempty,min=6"`
	NationalID string `json:"national_id" validate:"required,len=14,digitsonly"`
	Image      []byte `json:"-"`
}

// StaffService manages one staff kind.  Managers are administered by
// admins; receptionists by the manager who created them or an admin.
type StaffService struct {
	staff      StaffStore
	avatars    Avatars
	bcryptCost int
	log        *zap.SugaredLogger
}

// NewStaffService returns a StaffService for the kind of staff.  avatars may be nil.
func NewStaffService(staff StaffStore, avatars Avatars, bcryptCost int, log *zap.SugaredLogger) *StaffService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &StaffService{staff: staff, avatars: avatars, bcryptCost: bcryptCost, log: log}
}

func (s *StaffService) kind() model.ActorKind { return s.staff.Kind() }

func (s *StaffService) imageDir() string {
	if s.kind() == model.KindReceptionist {
		return "images/receptionist"
	}
	return "images"
}

// creatorRole is the least role allowed to create accounts of this kind.
func (s *StaffService) creatorRole() model.ActorKind {
	if s.kind() == model.KindManager {
		return model.KindAdmin
	}
	return model.KindManager
}

// List is open to managers and above.  A manager listing managers sees
// their own record first; every row says whether the caller may edit it.
func (s *StaffService) List(ctx context.Context, actor model.OwnerRef, search string, page int) (Listing[model.Staff], error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return Listing[model.Staff]{}, ErrForbidden
	}
	filter := repository.StaffFilter{Search: search}
	if s.kind() == model.KindManager && actor.Kind == model.KindManager {
		filter.PinFirst = actor.ID
	}
	items, total, err := s.staff.List(ctx, filter, repository.Page{Number: page})
	if err != nil {
		return Listing[model.Staff]{}, err
	}
	for i := range items {
		items[i].Editable = s.guard(items[i], actor) == nil
	}
	return listing(items, total, page), nil
}

// guard applies the mutation rule of this kind to one account.
func (s *StaffService) guard(st model.Staff, actor model.OwnerRef) error {
	if s.kind() == model.KindManager {
		if actor.Kind != model.KindAdmin {
			return ErrForbidden
		}
		return nil
	}
	return access.RequireOwnerOrRole(st.CreatedBy, actor, model.KindAdmin)
}

// Get returns one account, marked editable when the actor may change it.
func (s *StaffService) Get(ctx context.Context, actor model.OwnerRef, id uint64) (*model.Staff, error) {
	if !access.Authorize(actor.Kind, model.KindManager) {
		return nil, ErrForbidden
	}
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(string(s.kind()), err)
	}
	st.Editable = s.guard(*st, actor) == nil
	return st, nil
}

// Create adds an account with a system-issued login email.
func (s *StaffService) Create(ctx context.Context, actor model.OwnerRef, in StaffInput) (*model.Staff, error) {
	if !access.Authorize(actor.Kind, s.creatorRole()) {
		return nil, ErrForbidden
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, invalid("password", "is required")
	}
	if err := s.checkUnique(ctx, in, 0); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	st := &model.Staff{
		Name:         in.Name,
		ActualEmail:  in.Email,
		PasswordHash: hash,
		NationalID:   in.NationalID,
		Image:        model.DefaultImage,
		CreatedBy:    actor,
	}
	if len(in.Image) > 0 && s.avatars != nil {
		path, err := s.avatars.Save(ctx, in.Image, s.imageDir())
		if err != nil {
			return nil, invalid("image", "could not be processed")
		}
		st.Image = path
	}
	if err := s.staff.Create(ctx, st); err != nil {
		s.removeImage(ctx, st.Image)
		return nil, storeErr(string(s.kind()), err)
	}
	st.Editable = true
	return st, nil
}

// Update changes an account; an empty password keeps the old one.
func (s *StaffService) Update(ctx context.Context, actor model.OwnerRef, id uint64, in StaffInput) (*model.Staff, error) {
	if !access.Authorize(actor.Kind, s.creatorRole()) {
		return nil, ErrForbidden
	}
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(string(s.kind()), err)
	}
	if err := s.guard(*st, actor); err != nil {
		return nil, err
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in, st.ID); err != nil {
		return nil, err
	}

	st.Name = in.Name
	st.ActualEmail = in.Email
	st.NationalID = in.NationalID
	st.PasswordHash = ""
	if in.Password != "" {
		if st.PasswordHash, err = utils.HashPassword(in.Password, s.bcryptCost); err != nil {
			return nil, err
		}
	}
	previous := st.Image
	if len(in.Image) > 0 && s.avatars != nil {
		path, err := s.avatars.Save(ctx, in.Image, s.imageDir())
		if err != nil {
			return nil, invalid("image", "could not be processed")
		}
		st.Image = path
	}
	if err := s.staff.Update(ctx, st); err != nil {
		if st.Image != previous {
			s.removeImage(ctx, st.Image)
		}
		return nil, storeErr(string(s.kind()), err)
	}
	if st.Image != previous {
		s.removeImage(ctx, previous)
	}
	st.Editable = true
	return st, nil
}

// Delete soft-deletes the account and drops its avatar.
func (s *StaffService) Delete(ctx context.Context, actor model.OwnerRef, id uint64) error {
	if !access.Authorize(actor.Kind, s.creatorRole()) {
		return ErrForbidden
	}
	st, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return storeErr(string(s.kind()), err)
	}
	if err := s.guard(*st, actor); err != nil {
		return err
	}
	if err := s.staff.SoftDelete(ctx, id); err != nil {
		return storeErr(string(s.kind()), err)
	}
	s.removeImage(ctx, st.Image)
	return nil
}

func (s *StaffService) checkUnique(ctx context.Context, in StaffInput, exceptID uint64) error {
	if taken, err := s.staff.Taken(ctx, "actual_email", in.Email, exceptID); err != nil {
		return err
	} else if taken {
		return invalid("email", "has already been taken")
	}
	if taken, err := s.staff.Taken(ctx, "national_id", in.NationalID, exceptID); err != nil {
		return err
	} else if taken {
		return invalid("national_id", "has already been taken")
	}
	return nil
}

// removeImage deletes a non-default avatar; failures are only logged.
func (s *StaffService) removeImage(ctx context.Context, path string) {
	if path == "" || path == model.DefaultImage || s.avatars == nil {
		return
	}
	if err := s.avatars.Remove(ctx, path); err != nil {
		s.log.Warnw("avatar removal failed", "path", path, "error", err)
	}
}
