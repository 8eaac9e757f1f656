package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// RoomFilter narrows room listings.
type RoomFilter struct {
	Owner   *model.OwnerRef
	Manager *model.OwnerRef
	FloorID uint64
	Search  string
}

// RoomRepo persists rooms and owns the availability toggles used by the
// reservation workflow.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `r.id, r.name, r.number, r.capacity, r.price, r.floor_id, r.is_available,
	r.created_by_kind, r.created_by_id, r.created_at, r.updated_at`

const roomReservationCount = `(SELECT COUNT(*) FROM reservations rs WHERE rs.room_id = r.id AND rs.deleted_at IS NULL)`

func scanRoom(sc interface{ Scan(...any) error }, rm *model.Room, extra ...any) error {
	var kind string
	var ownerID uint64
	dest := append([]any{&rm.ID, &rm.Name, &rm.Number, &rm.Capacity, &rm.Price, &rm.FloorID, &rm.IsAvailable,
		&kind, &ownerID, &rm.CreatedAt, &rm.UpdatedAt}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return err
	}
	owner, err := scanOwner(kind, ownerID)
	if err != nil {
		return err
	}
	rm.Owner = owner
	return nil
}

func (w *where) roomFilter(f RoomFilter) {
	w.owner("r.created_by", f.Owner)
	w.owner("r.created_by", f.Manager)
	if f.FloorID > 0 {
		w.add("r.floor_id = ?", f.FloorID)
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		w.add("(r.number LIKE ? OR r.name LIKE ? OR CAST(r.capacity AS CHAR) LIKE ?)", p, p, p)
	}
}

// List returns one page of rooms, newest first, and the total match count.
func (r *RoomRepo) List(ctx context.Context, filter RoomFilter, page Page) ([]model.Room, int, error) {
	var w where
	w.roomFilter(filter)
	return r.list(ctx, w, page)
}

// ListAvailable pages through rooms that are currently bookable.
func (r *RoomRepo) ListAvailable(ctx context.Context, page Page) ([]model.Room, int, error) {
	var w where
	w.add("r.is_available = 1")
	return r.list(ctx, w, page)
}

func (r *RoomRepo) list(ctx context.Context, w where, page Page) ([]model.Room, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms r`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := page.Limit()
	q := `SELECT ` + roomColumns + `, ` + roomReservationCount + ` FROM rooms r` + w.sql() +
		` ORDER BY r.created_at DESC, r.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rooms := make([]model.Room, 0, limit)
	for rows.Next() {
		var rm model.Room
		if err := scanRoom(rows, &rm, &rm.ReservationCount); err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, total, rows.Err()
}

// Stats counts rooms in scope by availability.
func (r *RoomRepo) Stats(ctx context.Context, owner *model.OwnerRef) (model.RoomStats, error) {
	var w where
	w.owner("r.created_by", owner)
	q := `SELECT COUNT(*), COALESCE(SUM(r.is_available = 0), 0) FROM rooms r` + w.sql()
	var s model.RoomStats
	if err := r.db.QueryRowContext(ctx, q, w.args...).Scan(&s.Total, &s.Reserved); err != nil {
		return model.RoomStats{}, err
	}
	s.Available = s.Total - s.Reserved
	return s, nil
}

// GetByID retrieves a room and its live reservation count.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	q := `SELECT ` + roomColumns + `, ` + roomReservationCount + ` FROM rooms r WHERE r.id = ?`
	var rm model.Room
	if err := scanRoom(r.db.QueryRowContext(ctx, q, id), &rm, &rm.ReservationCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// Create inserts a new available room.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (name, number, capacity, price, floor_id, is_available, created_by_kind, created_by_id)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		rm.Name, rm.Number, rm.Capacity, rm.Price, rm.FloorID, string(rm.Owner.Kind), rm.Owner.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.IsAvailable = true
	return nil
}

// Update writes the mutable room fields.  The number and availability
// are not touched here.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, capacity = ?, price = ?, floor_id = ?, created_by_kind = ?, created_by_id = ?
		 WHERE id = ?`,
		rm.Name, rm.Capacity, rm.Price, rm.FloorID, string(rm.Owner.Kind), rm.Owner.ID, rm.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return expectRow(ctx, r.db, res, "SELECT 1 FROM rooms WHERE id = ?", rm.ID)
}

// Delete removes a room no reservation references, cancelled ones
// included.  Returns ErrConflict otherwise.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM rooms WHERE id = ? AND NOT EXISTS (SELECT 1 FROM reservations WHERE room_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id = ?", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrConflict
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// takeRoom marks a room unavailable only if it is currently available.
// Zero affected rows means another reservation already holds it.
func takeRoom(ctx context.Context, ex execer, roomID uint64) error {
	res, err := ex.ExecContext(ctx, `UPDATE rooms SET is_available = 0 WHERE id = ? AND is_available = 1`, roomID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomUnavailable
	}
	return nil
}

// releaseRoom marks a room available again.
func releaseRoom(ctx context.Context, ex execer, roomID uint64) error {
	_, err := ex.ExecContext(ctx, `UPDATE rooms SET is_available = 1 WHERE id = ?`, roomID)
	return err
}
