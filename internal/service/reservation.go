package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/access"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// TemplateReservationApproved names the notification sent on approval.
const TemplateReservationApproved = "reservation_approved"

// ReservationInput is shared by the client and staff paths.  ClientID is
// read on the staff path only.
type ReservationInput struct {
	ClientID           uint64 `json:"client_id"`
	RoomID             uint64 `json:"room_id" validate:"required"`
	CheckIn            string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut           string `json:"check_out" validate:"required,datetime=2006-01-02"`
	AccompanyingNumber int    `json:"accompanying_number" validate:"min=0"`
}

// ApprovedPayload is the body of the approval notification.
type ApprovedPayload struct {
	ReservationID uint64 `json:"reservation_id"`
	RoomName      string `json:"room_name"`
	RoomNumber    string `json:"room_number"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	Price         string `json:"price"`
}

// ReservationMetrics counts reservation creations by path.
type ReservationMetrics interface {
	ReservationCreated(path string)
}

type noopMetrics struct{}

func (noopMetrics) ReservationCreated(string) {}
func (noopMetrics) BanEnforced(model.ActorKind) {}

// ReservationService runs the reservation workflow: pending client
// bookings, pre-approved staff bookings, approval and cancellation, with
// room holds moved atomically by the store.
type ReservationService struct {
	reservations ReservationStore
	rooms        RoomStore
	clients      ClientStore
	notifier     Notifier
	metrics      ReservationMetrics
	log          *zap.SugaredLogger
	now          Clock
}

// NewReservationService wires the booking workflow.
func NewReservationService(reservations ReservationStore, rooms RoomStore, clients ClientStore, notifier Notifier,
	metrics ReservationMetrics, log *zap.SugaredLogger, now Clock) *ReservationService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{reservations: reservations, rooms: rooms, clients: clients, notifier: notifier,
		metrics: metrics, log: log, now: now}
}

// ListOwn pages through the calling client's live reservations.
func (s *ReservationService) ListOwn(ctx context.Context, actor model.OwnerRef, page int) (Listing[model.Reservation], error) {
	if actor.Kind != model.KindClient {
		return Listing[model.Reservation]{}, ErrForbidden
	}
	items, total, err := s.reservations.List(ctx, repository.ReservationFilter{ClientID: actor.ID}, repository.Page{Number: page})
	if err != nil {
		return Listing[model.Reservation]{}, err
	}
	return listing(items, total, page), nil
}

// ListAll shows every live reservation to any staff member.
func (s *ReservationService) ListAll(ctx context.Context, actor model.OwnerRef, search string, page int) (Listing[model.Reservation], error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return Listing[model.Reservation]{}, ErrForbidden
	}
	items, total, err := s.reservations.List(ctx, repository.ReservationFilter{Search: search}, repository.Page{Number: page})
	if err != nil {
		return Listing[model.Reservation]{}, err
	}
	return listing(items, total, page), nil
}

// Get returns a reservation to its client or to any staff member.
func (s *ReservationService) Get(ctx context.Context, actor model.OwnerRef, id uint64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", err)
	}
	if actor.Kind == model.KindClient && res.ClientID != actor.ID {
		// Another client's reservation does not exist for this caller.
		return nil, storeErr("reservation", repository.ErrNotFound)
	}
	if !access.Authorize(actor.Kind, model.KindReceptionist) && actor.Kind != model.KindClient {
		return nil, ErrForbidden
	}
	return res, nil
}

// stay holds a validated date range.
type stay struct {
	in, out time.Time
}

// price totals the stay at the room's nightly rate.
func (st stay) price(room *model.Room) (int64, error) {
	total, err := model.ReservationPrice(room.Price, st.in, st.out)
	if err != nil {
		return 0, invalid("check_out", "stay total is out of range")
	}
	return total, nil
}

func (s *ReservationService) parseStay(in ReservationInput) (stay, error) {
	checkIn, err := model.ParseDate(in.CheckIn)
	if err != nil {
		return stay{}, invalid("check_in", "must be a valid date")
	}
	checkOut, err := model.ParseDate(in.CheckOut)
	if err != nil {
		return stay{}, invalid("check_out", "must be a valid date")
	}
	if checkIn.Before(model.DateOnly(s.now().UTC())) {
		return stay{}, invalid("check_in", "cannot be in the past")
	}
	if !checkOut.After(checkIn) {
		return stay{}, invalid("check_out", "must be after check-in date")
	}
	return stay{in: checkIn, out: checkOut}, nil
}

func checkOccupancy(room *model.Room, accompanying int) error {
	if accompanying > room.Capacity {
		return invalid("accompanying_number", "cannot exceed room capacity of %d", room.Capacity)
	}
	return nil
}

func roomUnavailable(room *model.Room) error {
	return invalid("room_id", "room %s is not available", room.Number)
}

// CreateForClient books a room for the calling client.  The reservation
// starts pending and leaves the room bookable until it is approved.
func (s *ReservationService) CreateForClient(ctx context.Context, actor model.OwnerRef, in ReservationInput) (*model.Reservation, error) {
	if actor.Kind != model.KindClient {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("room_id", "selected room does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !room.IsAvailable {
		return nil, roomUnavailable(room)
	}
	st, err := s.parseStay(in)
	if err != nil {
		return nil, err
	}
	if err := checkOccupancy(room, in.AccompanyingNumber); err != nil {
		return nil, err
	}
	price, err := st.price(room)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ClientID:           actor.ID,
		RoomID:             room.ID,
		CheckIn:            st.in,
		CheckOut:           st.out,
		AccompanyingNumber: in.AccompanyingNumber,
		Price:              price,
		Owner:              actor,
		RoomName:           room.Name,
		RoomNumber:         room.Number,
	}
	if err := s.reservations.Create(ctx, res, false); err != nil {
		return nil, storeErr("reservation", err)
	}
	s.metrics.ReservationCreated("client")
	return res, nil
}

// CreateForStaff books a room on behalf of a client.  The reservation is
// approved immediately and takes the room.
func (s *ReservationService) CreateForStaff(ctx context.Context, actor model.OwnerRef, in ReservationInput) (*model.Reservation, error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return nil, ErrForbidden
	}
	if err := check(in); err != nil {
		return nil, err
	}
	if in.ClientID == 0 {
		return nil, invalid("client_id", "is required")
	}
	client, err := s.clients.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, storeErr("client", err)
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, storeErr("room", err)
	}
	st, err := s.parseStay(in)
	if err != nil {
		return nil, err
	}
	if err := checkOccupancy(room, in.AccompanyingNumber); err != nil {
		return nil, err
	}
	price, err := st.price(room)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ClientID:           client.ID,
		RoomID:             room.ID,
		CheckIn:            st.in,
		CheckOut:           st.out,
		AccompanyingNumber: in.AccompanyingNumber,
		Price:              price,
		IsApproved:         true,
		Owner:              actor,
		ClientName:         client.Name,
		RoomName:           room.Name,
		RoomNumber:         room.Number,
	}
	if err := s.reservations.Create(ctx, res, true); err != nil {
		if errors.Is(err, repository.ErrRoomUnavailable) {
			return nil, roomUnavailable(room)
		}
		return nil, storeErr("reservation", err)
	}
	s.metrics.ReservationCreated("staff")
	return res, nil
}

// UpdateForClient edits the calling client's reservation.
func (s *ReservationService) UpdateForClient(ctx context.Context, actor model.OwnerRef, id uint64, in ReservationInput) (*model.Reservation, error) {
	res, err := s.ownReservation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.ClientID = res.ClientID
	return s.update(ctx, res, in)
}

// UpdateForStaff edits a reservation the staff member created, or any
// reservation for an admin.
func (s *ReservationService) UpdateForStaff(ctx context.Context, actor model.OwnerRef, id uint64, in ReservationInput) (*model.Reservation, error) {
	res, err := s.staffReservation(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.ClientID == 0 {
		in.ClientID = res.ClientID
	}
	if in.ClientID != res.ClientID {
		client, err := s.clients.GetByID(ctx, in.ClientID)
		if err != nil {
			return nil, storeErr("client", err)
		}
		res.ClientName = client.Name
	}
	return s.update(ctx, res, in)
}

// update recomputes the price and moves the room hold when the
// reservation holds one and the room changed.  Approval is untouched.
func (s *ReservationService) update(ctx context.Context, res *model.Reservation, in ReservationInput) (*model.Reservation, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("room_id", "selected room does not exist")
	}
	if err != nil {
		return nil, err
	}
	st, err := s.parseStay(in)
	if err != nil {
		return nil, err
	}
	if err := checkOccupancy(room, in.AccompanyingNumber); err != nil {
		return nil, err
	}
	price, err := st.price(room)
	if err != nil {
		return nil, err
	}
	swap := res.HoldsRoom()
	if !swap && room.ID != res.RoomID && !room.IsAvailable {
		return nil, roomUnavailable(room)
	}

	held := res.RoomID
	res.ClientID = in.ClientID
	res.RoomID = room.ID
	res.CheckIn = st.in
	res.CheckOut = st.out
	res.AccompanyingNumber = in.AccompanyingNumber
	res.Price = price
	res.RoomName = room.Name
	res.RoomNumber = room.Number
	if err := s.reservations.Update(ctx, res, held, swap); err != nil {
		if errors.Is(err, repository.ErrRoomUnavailable) {
			return nil, roomUnavailable(room)
		}
		return nil, storeErr("reservation", err)
	}
	return res, nil
}

// CancelForClient cancels the calling client's reservation.
func (s *ReservationService) CancelForClient(ctx context.Context, actor model.OwnerRef, id uint64) error {
	res, err := s.ownReservation(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.cancel(ctx, res)
}

// CancelForStaff cancels a reservation the staff member created, or any
// reservation for an admin.
func (s *ReservationService) CancelForStaff(ctx context.Context, actor model.OwnerRef, id uint64) error {
	res, err := s.staffReservation(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.cancel(ctx, res)
}

func (s *ReservationService) cancel(ctx context.Context, res *model.Reservation) error {
	if !res.Status().CanCancel() {
		return storeErr("reservation", repository.ErrNotFound)
	}
	return storeErr("reservation", s.reservations.Cancel(ctx, res.ID, res.RoomID, res.HoldsRoom()))
}

// Approve moves a pending reservation to approved, takes its room and
// notifies the client.  Approving an approved reservation changes
// nothing and sends nothing.
func (s *ReservationService) Approve(ctx context.Context, actor model.OwnerRef, id uint64) (*model.Reservation, error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return nil, ErrForbidden
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", err)
	}
	if !res.Status().CanApprove() {
		return res, nil
	}
	fired, err := s.reservations.Approve(ctx, res.ID, res.RoomID)
	if err != nil {
		return nil, storeErr("reservation", err)
	}
	res.IsApproved = true
	if fired {
		s.notifyApproved(ctx, res)
	}
	return res, nil
}

func (s *ReservationService) notifyApproved(ctx context.Context, res *model.Reservation) {
	if s.notifier == nil {
		return
	}
	client, err := model.NewOwnerRef(model.KindClient, res.ClientID)
	if err != nil {
		s.log.Warnw("approval notification skipped", "reservation_id", res.ID, "error", err)
		return
	}
	payload := ApprovedPayload{
		ReservationID: res.ID,
		RoomName:      res.RoomName,
		RoomNumber:    res.RoomNumber,
		CheckIn:       res.CheckIn.Format(model.DateLayout),
		CheckOut:      res.CheckOut.Format(model.DateLayout),
		Price:         model.FormatMinorUnits(res.Price),
	}
	if err := s.notifier.Notify(ctx, client, TemplateReservationApproved, payload); err != nil {
		s.log.Warnw("approval notification failed", "reservation_id", res.ID, "error", err)
	}
}

func (s *ReservationService) ownReservation(ctx context.Context, actor model.OwnerRef, id uint64) (*model.Reservation, error) {
	if actor.Kind != model.KindClient {
		return nil, ErrForbidden
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", err)
	}
	if res.ClientID != actor.ID {
		return nil, storeErr("reservation", repository.ErrNotFound)
	}
	return res, nil
}

func (s *ReservationService) staffReservation(ctx context.Context, actor model.OwnerRef, id uint64) (*model.Reservation, error) {
	if !access.Authorize(actor.Kind, model.KindReceptionist) {
		return nil, ErrForbidden
	}
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("reservation", err)
	}
	if err := access.RequireOwnerOrRole(res.Owner, actor, model.KindAdmin); err != nil {
		return nil, err
	}
	return res, nil
}
