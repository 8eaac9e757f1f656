package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ReservationFilter narrows reservation listings.  ClientID restricts to
// one client's stays; zero lists every live reservation.
type ReservationFilter struct {
	ClientID uint64
	Search   string
}

// ReservationRepo persists reservations.  Every write that moves a room
// hold runs in one transaction with the conditional availability update
// so a failed take leaves neither the reservation nor the room changed.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `r.id, r.client_id, r.room_id, r.check_in, r.check_out, r.accompanying_number,
	r.price, r.is_approved, r.payment_reference, r.created_by_kind, r.created_by_id,
	r.created_at, r.updated_at, r.deleted_at, c.name, rm.name, rm.number`

const reservationFrom = ` FROM reservations r
	JOIN clients c ON c.id = r.client_id
	JOIN rooms rm ON rm.id = r.room_id`

func scanReservation(sc interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res     model.Reservation
		payRef  sql.NullString
		deleted sql.NullTime
		kind    string
		ownerID uint64
	)
	if err := sc.Scan(&res.ID, &res.ClientID, &res.RoomID, &res.CheckIn, &res.CheckOut, &res.AccompanyingNumber,
		&res.Price, &res.IsApproved, &payRef, &kind, &ownerID,
		&res.CreatedAt, &res.UpdatedAt, &deleted, &res.ClientName, &res.RoomName, &res.RoomNumber); err != nil {
		return res, err
	}
	owner, err := scanOwner(kind, ownerID)
	if err != nil {
		return res, err
	}
	res.Owner = owner
	res.PaymentReference = nullStringPtr(payRef)
	res.DeletedAt = nullTimePtr(deleted)
	return res, nil
}

// List returns one page of live reservations, newest first.
func (r *ReservationRepo) List(ctx context.Context, filter ReservationFilter, page Page) ([]model.Reservation, int, error) {
	var w where
	w.add("r.deleted_at IS NULL")
	if filter.ClientID > 0 {
		w.add("r.client_id = ?", filter.ClientID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(c.name LIKE ? OR rm.number LIKE ? OR rm.name LIKE ?)", p, p, p)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+reservationFrom+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := page.Limit()
	q := `SELECT ` + reservationColumns + reservationFrom + w.sql() + ` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0, limit)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, res)
	}
	return out, total, rows.Err()
}

// GetByID loads a live reservation.  Cancelled reservations are reported
// as ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + reservationFrom + ` WHERE r.id = ? AND r.deleted_at IS NULL`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Create inserts the reservation.  When hold is set the room is taken in
// the same transaction and ErrRoomUnavailable aborts the insert.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation, hold bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if hold {
		if err := takeRoom(ctx, tx, res.RoomID); err != nil {
			return err
		}
	}
	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (client_id, room_id, check_in, check_out, accompanying_number, price, is_approved,
		   created_by_kind, created_by_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ClientID, res.RoomID, res.CheckIn.Format(model.DateLayout), res.CheckOut.Format(model.DateLayout),
		res.AccompanyingNumber, res.Price, res.IsApproved, string(res.Owner.Kind), res.Owner.ID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites the reservation's editable fields.  When swap is set
// and the room changed, the new room is taken and heldRoomID released in
// the same transaction.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation, heldRoomID uint64, swap bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if swap && res.RoomID != heldRoomID {
		if err := takeRoom(ctx, tx, res.RoomID); err != nil {
			return err
		}
		if err := releaseRoom(ctx, tx, heldRoomID); err != nil {
			return err
		}
	}
	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET client_id = ?, room_id = ?, check_in = ?, check_out = ?, accompanying_number = ?, price = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		res.ClientID, res.RoomID, res.CheckIn.Format(model.DateLayout), res.CheckOut.Format(model.DateLayout),
		res.AccompanyingNumber, res.Price, res.ID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM reservations WHERE id = ? AND deleted_at IS NULL", res.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Cancel soft-deletes the reservation and, when release is set, frees its
// room in the same transaction.
func (r *ReservationRepo) Cancel(ctx context.Context, id, roomID uint64, release bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if release {
		if err := releaseRoom(ctx, tx, roomID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Approve flips a pending reservation to approved and takes its room.
// It reports false when the reservation was already approved, which
// leaves everything untouched.
func (r *ReservationRepo) Approve(ctx context.Context, id, roomID uint64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE reservations SET is_approved = 1 WHERE id = ? AND is_approved = 0 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if err := takeRoom(ctx, tx, roomID); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}

// SetPaymentReference stores the checkout token against a live reservation.
func (r *ReservationRepo) SetPaymentReference(ctx context.Context, id uint64, ref string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET payment_reference = ? WHERE id = ? AND deleted_at IS NULL`, ref, id)
	if err != nil {
		return err
	}
	return expectRow(ctx, r.db, res, "SELECT 1 FROM reservations WHERE id = ? AND deleted_at IS NULL", id)
}
