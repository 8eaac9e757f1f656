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

// ClientInput is used for self-registration and staff creation.  Staff
// need not repeat the password.
type ClientInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	NationalID           string `json:"national_id" validate:"required,len=10"`
	Country              string `json:"country" validate:"required,alphaspace"`
	Gender               string `json:"gender" validate:"required,oneof=male female"`
	Image                []byte `json:"-"`
}

// ClientService manages client accounts.
type ClientService struct {
	clients    ClientStore
	countries  CountryStore
	avatars    Avatars
	bcryptCost int
	log        *zap.SugaredLogger
}

// NewClientService returns a ClientService.  avatars may be nil.
func NewClientService(clients ClientStore, countries CountryStore, avatars Avatars, bcryptCost int, log *zap.SugaredLogger) *ClientService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ClientService{clients: clients, countries: countries, avatars: avatars, bcryptCost: bcryptCost, log: log}
}

// Register creates a client that owns itself.
func (s *ClientService) Register(ctx context.Context, in ClientInput) (*model.Client, error) {
	return s.create(ctx, in, model.OwnerRef{})
}

// CreateByStaff creates a client recorded as created by the staff actor.
func (s *ClientService) CreateByStaff(ctx context.Context, actor model.OwnerRef, in ClientInput) (*model.Client, error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return nil, ErrForbidden
	}
	if in.PasswordConfirmation == "" {
		in.PasswordConfirmation = in.Password
	}
	return s.create(ctx, in, actor)
}

func (s *ClientService) create(ctx context.Context, in ClientInput, by model.OwnerRef) (*model.Client, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Country = strings.TrimSpace(in.Country)
	if err := check(in); err != nil {
		return nil, err
	}
	if model.KindForEmail(in.Email) != model.KindClient {
		return nil, invalid("email", "this domain is reserved")
	}
	ok, err := s.countries.Exists(ctx, in.Country)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("country", "invalid country please enter valid one")
	}
	for _, u := range []struct{ column, field, value string }{
		{"email", "email", in.Email},
		{"national_id", "national_id", in.NationalID},
	} {
		taken, err := s.clients.Taken(ctx, u.column, u.value)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, invalid(u.field, "has already been taken")
		}
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	c := &model.Client{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		NationalID:   in.NationalID,
		Country:      in.Country,
		Gender:       in.Gender,
		CreatedBy:    by,
	}
	if len(in.Image) > 0 && s.avatars != nil {
		path, err := s.avatars.Save(ctx, in.Image, "clients")
		if err != nil {
			return nil, invalid("image", "could not be processed")
		}
		c.Image = &path
	}
	if err := s.clients.Create(ctx, c); err != nil {
		if c.Image != nil {
			if rmErr := s.avatars.Remove(ctx, *c.Image); rmErr != nil {
				s.log.Warnw("avatar removal failed", "path", *c.Image, "error", rmErr)
			}
		}
		return nil, storeErr("client", err)
	}
	return c, nil
}

// List pages through clients for staff.
func (s *ClientService) List(ctx context.Context, actor model.OwnerRef, search string, page int) (Listing[model.Client], error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return Listing[model.Client]{}, ErrForbidden
	}
	items, total, err := s.clients.List(ctx, search, repository.Page{Number: page})
	if err != nil {
		return Listing[model.Client]{}, err
	}
	return listing(items, total, page), nil
}

// Countries returns the reference list used by registration.
func (s *ClientService) Countries(ctx context.Context) ([]string, error) {
	return s.countries.List(ctx)
}
