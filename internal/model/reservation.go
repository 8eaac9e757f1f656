package model

import (
	"errors"
	"math"
	"time"
)

// ReservationStatus is derived from the approval flag and the soft-delete
// marker; it is never stored.
type ReservationStatus string

const (
	StatusPendingApproval ReservationStatus = "pending_approval"
	StatusApproved        ReservationStatus = "approved"
	StatusCancelled       ReservationStatus = "cancelled"
)

// DateLayout is the wire and storage format of check-in/check-out dates.
const DateLayout = "2006-01-02"

// Reservation books a room for a client over a date range.
//
// Fields:
//  ClientID           – client the stay is for.
//  RoomID             – booked room.
//  CheckIn/CheckOut   – stay dates (UTC midnight).
//  AccompanyingNumber – guests besides the client, 0..room capacity.
//  Price              – computed total in minor units.
//  IsApproved         – set once by staff or at staff creation.
//  PaymentReference   – opaque checkout token, nil until paid.
//  Owner              – actor that created the reservation.
//  DeletedAt          – soft-delete marker (cancelled).
type Reservation struct {
	ID                 uint64     `json:"id"`
	ClientID           uint64     `json:"client_id"`
	RoomID             uint64     `json:"room_id"`
	CheckIn            time.Time  `json:"check_in"`
	CheckOut           time.Time  `json:"check_out"`
	AccompanyingNumber int        `json:"accompanying_number"`
	Price              int64      `json:"price"`
	IsApproved         bool       `json:"is_approved"`
	PaymentReference   *string    `json:"payment_reference,omitempty"`
	Owner              OwnerRef   `json:"owner"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`

	// Display fields filled by listing queries.
	ClientName string `json:"client_name,omitempty"`
	RoomName   string `json:"room_name,omitempty"`
	RoomNumber string `json:"room_number,omitempty"`
}

// Status derives the workflow state.
func (r Reservation) Status() ReservationStatus {
	switch {
	case r.DeletedAt != nil:
		return StatusCancelled
	case r.IsApproved:
		return StatusApproved
	default:
		return StatusPendingApproval
	}
}

// HoldsRoom reports whether this reservation keeps its room unavailable.
// Only approved, live reservations hold their room.
func (r Reservation) HoldsRoom() bool { return r.Status() == StatusApproved }

// CanApprove is true only for pending reservations.
func (s ReservationStatus) CanApprove() bool { return s == StatusPendingApproval }

// CanEdit is true for every state except cancelled.
func (s ReservationStatus) CanEdit() bool { return s != StatusCancelled }

// CanCancel is true for every state except cancelled.
func (s ReservationStatus) CanCancel() bool { return s != StatusCancelled }

// StayNights counts whole days between check-in and check-out.
func StayNights(checkIn, checkOut time.Time) int {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	return int(out.Sub(in).Hours() / 24)
}

// ErrPriceOverflow is returned when a stay total does not fit in int64.
var ErrPriceOverflow = errors.New("reservation price out of range")

// ReservationPrice is the nightly price times the number of nights, with a
// one-night floor for same-day stays.
func ReservationPrice(nightly int64, checkIn, checkOut time.Time) (int64, error) {
	nights := int64(StayNights(checkIn, checkOut))
	if nights < 1 {
		nights = 1
	}
	if nightly < 0 || nightly > math.MaxInt64/nights {
		return 0, ErrPriceOverflow
	}
	return nightly * nights, nil
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
