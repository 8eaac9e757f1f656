package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// FloorFilter narrows floor listings.  Owner is the visibility scope (nil
// for admins); Manager is the optional admin-side filter.
type FloorFilter struct {
	Owner   *model.OwnerRef
	Manager *model.OwnerRef
	Search  string
}

// FloorRepo persists floors.
type FloorRepo struct {
	db *sql.DB
}

// NewFloorRepo constructs a FloorRepo with the given DB handle.
func NewFloorRepo(db *sql.DB) *FloorRepo {
	return &FloorRepo{db: db}
}

const floorColumns = `f.id, f.name, f.number, f.created_by_kind, f.created_by_id, f.created_at, f.updated_at`

func scanFloor(sc interface{ Scan(...any) error }, f *model.Floor, extra ...any) error {
	var kind string
	var ownerID uint64
	dest := append([]any{&f.ID, &f.Name, &f.Number, &kind, &ownerID, &f.CreatedAt, &f.UpdatedAt}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return err
	}
	owner, err := scanOwner(kind, ownerID)
	if err != nil {
		return err
	}
	f.Owner = owner
	return nil
}

// Create assigns the next floor number and inserts the floor.  The highest
// number is read with FOR UPDATE so concurrent creators serialise.
func (r *FloorRepo) Create(ctx context.Context, f *model.Floor) error {
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

	var highest string
	err = tx.QueryRowContext(ctx,
		`SELECT number FROM floors ORDER BY CAST(SUBSTRING(number, 2) AS UNSIGNED) DESC LIMIT 1 FOR UPDATE`).
		Scan(&highest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	f.Number = model.NextFloorNumber(highest)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO floors (name, number, created_by_kind, created_by_id) VALUES (?, ?, ?, ?)`,
		f.Name, f.Number, string(f.Owner.Kind), f.Owner.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a floor and its room count.
func (r *FloorRepo) GetByID(ctx context.Context, id uint64) (*model.Floor, error) {
	q := `SELECT ` + floorColumns + `, (SELECT COUNT(*) FROM rooms rm WHERE rm.floor_id = f.id)
	      FROM floors f WHERE f.id = ?`
	var f model.Floor
	if err := scanFloor(r.db.QueryRowContext(ctx, q, id), &f, &f.RoomCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

// List returns one page of floors matching the filter, newest first, plus
// the total number of matches.
func (r *FloorRepo) List(ctx context.Context, filter FloorFilter, page Page) ([]model.Floor, int, error) {
	var w where
	w.owner("f.created_by", filter.Owner)
	w.owner("f.created_by", filter.Manager)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(f.name LIKE ? OR f.number LIKE ?)", p, p)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM floors f`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := page.Limit()
	q := `SELECT ` + floorColumns + `, (SELECT COUNT(*) FROM rooms rm WHERE rm.floor_id = f.id)
	      FROM floors f` + w.sql() + ` ORDER BY f.created_at DESC, f.id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	floors := make([]model.Floor, 0, limit)
	for rows.Next() {
		var f model.Floor
		if err := scanFloor(rows, &f, &f.RoomCount); err != nil {
			return nil, 0, err
		}
		floors = append(floors, f)
	}
	return floors, total, rows.Err()
}

// Options lists every floor in scope as id/name/number for room forms.
func (r *FloorRepo) Options(ctx context.Context, owner *model.OwnerRef) ([]model.Floor, error) {
	var w where
	w.owner("f.created_by", owner)
	rows, err := r.db.QueryContext(ctx, `SELECT `+floorColumns+` FROM floors f`+w.sql()+` ORDER BY f.number`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Floor
	for rows.Next() {
		var f model.Floor
		if err := scanFloor(rows, &f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Stats counts floors in scope, split by whether they have rooms.
func (r *FloorRepo) Stats(ctx context.Context, owner *model.OwnerRef) (model.FloorStats, error) {
	var w where
	w.owner("f.created_by", owner)
	q := `SELECT COUNT(*),
	             COALESCE(SUM(EXISTS (SELECT 1 FROM rooms rm WHERE rm.floor_id = f.id)), 0)
	      FROM floors f` + w.sql()
	var s model.FloorStats
	if err := r.db.QueryRowContext(ctx, q, w.args...).Scan(&s.Total, &s.WithRooms); err != nil {
		return model.FloorStats{}, err
	}
	s.Empty = s.Total - s.WithRooms
	return s, nil
}

// Update writes the floor's name and owner.
func (r *FloorRepo) Update(ctx context.Context, f *model.Floor) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE floors SET name = ?, created_by_kind = ?, created_by_id = ? WHERE id = ?`,
		f.Name, string(f.Owner.Kind), f.Owner.ID, f.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	return expectRow(ctx, r.db, res, "SELECT 1 FROM floors WHERE id = ?", f.ID)
}

// Delete removes a floor that has no rooms.  It returns ErrConflict when
// rooms still reference it and ErrNotFound when it does not exist.
func (r *FloorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM floors WHERE id = ? AND NOT EXISTS (SELECT 1 FROM rooms WHERE floor_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM floors WHERE id = ?", id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrConflict
}

// expectRow turns a zero-row update into ErrNotFound unless the row exists
// and was simply left unchanged.
func expectRow(ctx context.Context, db *sql.DB, res sql.Result, probe string, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	if err := db.QueryRowContext(ctx, probe, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
