package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// minCheckoutAmount is the smallest charge the gateway accepts, in minor
// units.
const minCheckoutAmount = 100

// CheckoutRequest describes one hosted-checkout session.
type CheckoutRequest struct {
	AmountMinor int64
	Name        string
	Description string
	SuccessURL  string
	CancelURL   string
}

// PaymentGateway opens a hosted checkout and returns the URL to redirect to.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (string, error)
}

// PaymentService starts checkout for a client's reservation and records
// the opaque session reference on success.
type PaymentService struct {
	reservations *ReservationService
	store        ReservationStore
	gateway      PaymentGateway
	baseURL      string
	log          *zap.SugaredLogger
}

// NewPaymentService returns a PaymentService.  A nil gateway disables checkout.
func NewPaymentService(reservations *ReservationService, store ReservationStore, gateway PaymentGateway, baseURL string, log *zap.SugaredLogger) *PaymentService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PaymentService{reservations: reservations, store: store, gateway: gateway,
		baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Checkout returns the hosted checkout URL for one of the client's own
// reservations.
func (s *PaymentService) Checkout(ctx context.Context, actor model.OwnerRef, reservationID uint64) (string, error) {
	res, err := s.reservations.ownReservation(ctx, actor, reservationID)
	if err != nil {
		return "", err
	}
	if !res.Status().CanEdit() {
		return "", fmt.Errorf("%w: reservation is cancelled", ErrConflict)
	}
	if s.gateway == nil {
		return "", fmt.Errorf("%w: payments are not configured", ErrConflict)
	}
	amount := res.Price
	if amount < minCheckoutAmount {
		amount = minCheckoutAmount
	}
	url, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		AmountMinor: amount,
		Name:        fmt.Sprintf("Reservation #%d", res.ID),
		Description: "Room: " + res.RoomName,
		SuccessURL:  fmt.Sprintf("%s/v1/payments/success?session_id={CHECKOUT_SESSION_ID}&reservation_id=%d", s.baseURL, res.ID),
		CancelURL:   s.baseURL + "/v1/client/reservations",
	})
	if err != nil {
		s.log.Errorw("checkout session failed", "reservation_id", res.ID, "error", err)
		return "", err
	}
	return url, nil
}

// Success stores the gateway session id on the reservation verbatim.
func (s *PaymentService) Success(ctx context.Context, actor model.OwnerRef, reservationID uint64, sessionID string) (*model.Reservation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, invalid("session_id", "is required")
	}
	res, err := s.reservations.ownReservation(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetPaymentReference(ctx, res.ID, sessionID); err != nil {
		return nil, storeErr("reservation", err)
	}
	res.PaymentReference = &sessionID
	return res, nil
}
