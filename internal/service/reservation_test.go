package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

type hotel struct {
	floors       *fakeFloors
	rooms        *fakeRooms
	reservations *fakeReservations
	clients      *fakeClients
	notifier     *fakeNotifier
	metrics      *countingMetrics

	floorSvc *FloorService
	roomSvc  *RoomService
	resSvc   *ReservationService
}

func newHotel(t *testing.T) *hotel {
	t.Helper()
	h := &hotel{
		floors:   newFakeFloors(),
		rooms:    newFakeRooms(),
		clients:  newFakeClients("Alice", "Bob"),
		notifier: &fakeNotifier{},
		metrics:  &countingMetrics{},
	}
	h.floors.rooms = h.rooms
	h.reservations = newFakeReservations(h.rooms)
	dir := newFakeDirectory(
		model.Credentials{Ref: admin, Name: "Root"},
		model.Credentials{Ref: manager, Name: "Mona"},
		model.Credentials{Ref: otherManager, Name: "Omar"},
	)
	h.floorSvc = NewFloorService(h.floors, dir)
	h.roomSvc = NewRoomService(h.rooms, h.floors, dir)
	h.resSvc = NewReservationService(h.reservations, h.rooms, h.clients, h.notifier, h.metrics, nil, fixedClock)
	return h
}

// room creates a floor and a room priced 50.00 a night for manager.
func (h *hotel) room(t *testing.T, number string, capacity int) *model.Room {
	t.Helper()
	ctx := context.Background()
	f, err := h.floorSvc.Create(ctx, manager, FloorInput{Name: "Floor " + number})
	require.NoError(t, err)
	rm, err := h.roomSvc.Create(ctx, manager, RoomInput{
		Name: "Deluxe " + number, Number: number, Capacity: capacity, Price: 50, FloorID: f.ID,
	})
	require.NoError(t, err)
	return rm
}

func stayIn(roomID uint64) ReservationInput {
	return ReservationInput{RoomID: roomID, CheckIn: "2026-03-10", CheckOut: "2026-03-12", AccompanyingNumber: 1}
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "want validation error, got %v", err)
	assert.Equal(t, field, ve.Field)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClientBookingApprovedByReceptionist(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)
	assert.Equal(t, int64(5000), rm.Price)

	res, err := h.resSvc.CreateForClient(ctx, guest, stayIn(rm.ID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, res.Status())
	assert.Equal(t, int64(10000), res.Price)
	assert.Equal(t, guest, res.Owner)
	assert.True(t, h.rooms.available(rm.ID), "pending booking must not hold the room")
	assert.Equal(t, 1, h.metrics.created["client"])

	approved, err := h.resSvc.Approve(ctx, reception, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status())
	assert.False(t, h.rooms.available(rm.ID))

	require.Len(t, h.notifier.sent, 1)
	sent := h.notifier.sent[0]
	assert.Equal(t, guest, sent.recipient)
	assert.Equal(t, TemplateReservationApproved, sent.template)
	payload := sent.payload.(ApprovedPayload)
	assert.Equal(t, "100.00", payload.Price)
	assert.Equal(t, "2026-03-10", payload.CheckIn)

	_, err = h.resSvc.Approve(ctx, reception, res.ID)
	require.NoError(t, err)
	assert.Len(t, h.notifier.sent, 1, "re-approval sends nothing")

	_, err = h.resSvc.CreateForClient(ctx, otherGuest, stayIn(rm.ID))
	assertField(t, err, "room_id")
}

func TestApproveRequiresStaff(t *testing.T) {
	h := newHotel(t)
	rm := h.room(t, "101", 2)
	res, err := h.resSvc.CreateForClient(context.Background(), guest, stayIn(rm.ID))
	require.NoError(t, err)

	_, err = h.resSvc.Approve(context.Background(), guest, res.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApproveConflictsWhenRoomTaken(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)
	first, err := h.resSvc.CreateForClient(ctx, guest, stayIn(rm.ID))
	require.NoError(t, err)
	second, err := h.resSvc.CreateForClient(ctx, otherGuest, stayIn(rm.ID))
	require.NoError(t, err)

	_, err = h.resSvc.Approve(ctx, reception, first.ID)
	require.NoError(t, err)
	_, err = h.resSvc.Approve(ctx, reception, second.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, h.notifier.sent, 1)
}

func TestCreateForClientValidatesStay(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)

	cases := []struct {
		name  string
		edit  func(*ReservationInput)
		field string
	}{
		{"past check-in", func(in *ReservationInput) { in.CheckIn = "2026-02-28" }, "check_in"},
		{"check-out not after check-in", func(in *ReservationInput) { in.CheckOut = in.CheckIn }, "check_out"},
		{"bad date", func(in *ReservationInput) { in.CheckOut = "12/03/2026" }, "check_out"},
		{"over capacity", func(in *ReservationInput) { in.AccompanyingNumber = 3 }, "accompanying_number"},
		{"unknown room", func(in *ReservationInput) { in.RoomID = 99 }, "room_id"},
		{"missing room", func(in *ReservationInput) { in.RoomID = 0 }, "room_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := stayIn(rm.ID)
			tc.edit(&in)
			_, err := h.resSvc.CreateForClient(ctx, guest, in)
			assertField(t, err, tc.field)
		})
	}
}

func TestCheckInTodayIsAllowed(t *testing.T) {
	h := newHotel(t)
	rm := h.room(t, "101", 2)
	in := ReservationInput{RoomID: rm.ID, CheckIn: "2026-03-01", CheckOut: "2026-03-02"}
	res, err := h.resSvc.CreateForClient(context.Background(), guest, in)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), res.Price)
}

func TestCreateForStaffHoldsRoom(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)

	in := stayIn(rm.ID)
	in.ClientID = 2
	res, err := h.resSvc.CreateForStaff(ctx, reception, in)
	require.NoError(t, err)
	assert.True(t, res.IsApproved)
	assert.Equal(t, reception, res.Owner)
	assert.Equal(t, "Bob", res.ClientName)
	assert.False(t, h.rooms.available(rm.ID))
	assert.Equal(t, 1, h.metrics.created["staff"])

	in.ClientID = 1
	_, err = h.resSvc.CreateForStaff(ctx, reception, in)
	assertField(t, err, "room_id")

	in.ClientID = 0
	_, err = h.resSvc.CreateForStaff(ctx, reception, in)
	assertField(t, err, "client_id")

	_, err = h.resSvc.CreateForStaff(ctx, guest, in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateApprovedReservationMovesHold(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	first := h.room(t, "101", 2)
	second := h.room(t, "102", 4)

	in := stayIn(first.ID)
	in.ClientID = 1
	res, err := h.resSvc.CreateForStaff(ctx, reception, in)
	require.NoError(t, err)

	in.RoomID = second.ID
	in.CheckOut = "2026-03-13"
	updated, err := h.resSvc.UpdateForStaff(ctx, reception, res.ID, in)
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.RoomID)
	assert.Equal(t, int64(15000), updated.Price)
	assert.True(t, updated.IsApproved)
	assert.True(t, h.rooms.available(first.ID))
	assert.False(t, h.rooms.available(second.ID))
}

func TestUpdatePendingReservationLeavesRooms(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	first := h.room(t, "101", 2)
	second := h.room(t, "102", 2)

	res, err := h.resSvc.CreateForClient(ctx, guest, stayIn(first.ID))
	require.NoError(t, err)
	updated, err := h.resSvc.UpdateForClient(ctx, guest, res.ID, stayIn(second.ID))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingApproval, updated.Status())
	assert.True(t, h.rooms.available(first.ID))
	assert.True(t, h.rooms.available(second.ID))

	_, err = h.resSvc.UpdateForClient(ctx, otherGuest, res.ID, stayIn(first.ID))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelReleasesHeldRoom(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)
	res, err := h.resSvc.CreateForClient(ctx, guest, stayIn(rm.ID))
	require.NoError(t, err)
	_, err = h.resSvc.Approve(ctx, reception, res.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, h.resSvc.CancelForClient(ctx, otherGuest, res.ID), ErrNotFound)
	assert.ErrorIs(t, h.resSvc.CancelForStaff(ctx, reception, res.ID), ErrForbidden,
		"staff may only cancel reservations they created")

	require.NoError(t, h.resSvc.CancelForClient(ctx, guest, res.ID))
	assert.True(t, h.rooms.available(rm.ID))
	assert.ErrorIs(t, h.resSvc.CancelForClient(ctx, guest, res.ID), ErrNotFound)

	_, err = h.resSvc.Get(ctx, guest, res.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminCancelsAnyReservation(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)
	in := stayIn(rm.ID)
	in.ClientID = 1
	res, err := h.resSvc.CreateForStaff(ctx, reception, in)
	require.NoError(t, err)

	require.NoError(t, h.resSvc.CancelForStaff(ctx, admin, res.ID))
	assert.True(t, h.rooms.available(rm.ID))
}

func TestListingsAreScoped(t *testing.T) {
	h := newHotel(t)
	ctx := context.Background()
	rm := h.room(t, "101", 2)
	_, err := h.resSvc.CreateForClient(ctx, guest, stayIn(rm.ID))
	require.NoError(t, err)
	_, err = h.resSvc.CreateForClient(ctx, otherGuest, stayIn(rm.ID))
	require.NoError(t, err)

	own, err := h.resSvc.ListOwn(ctx, guest, 1)
	require.NoError(t, err)
	require.Len(t, own.Data, 1)
	assert.Equal(t, guest.ID, own.Data[0].ClientID)

	all, err := h.resSvc.ListAll(ctx, reception, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Meta.Total)
	assert.Equal(t, 10, all.Meta.PerPage)

	_, err = h.resSvc.ListAll(ctx, guest, "", 1)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.resSvc.Get(ctx, otherGuest, own.Data[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
