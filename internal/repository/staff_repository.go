package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// StaffFilter narrows staff listings.  PinFirst moves one id to the top
// of the first page (a manager sees their own record first).
type StaffFilter struct {
	CreatedBy *model.OwnerRef
	Search    string
	PinFirst  uint64
}

// StaffRepo persists managers or receptionists; one instance per kind.
// Both tables share a shape and issue their own ids so the virtual login
// email can be derived before the insert.
type StaffRepo struct {
	db    *sql.DB
	kind  model.ActorKind
	table string
}

// NewStaffRepo binds a repository to the table of kind, which must be
// manager or receptionist.
func NewStaffRepo(db *sql.DB, kind model.ActorKind) (*StaffRepo, error) {
	if kind != model.KindManager && kind != model.KindReceptionist {
		return nil, fmt.Errorf("%w: %q is not a staff kind", model.ErrInvalidOwner, kind)
	}
	return &StaffRepo{db: db, kind: kind, table: principalTables[kind]}, nil
}

// Kind reports which staff table the repository serves.
func (r *StaffRepo) Kind() model.ActorKind { return r.kind }

func (r *StaffRepo) columns() string {
	return `id, name, email, actual_email, password_hash, national_id, image, created_by_kind, created_by_id,
	created_at, updated_at, deleted_at`
}

func (r *StaffRepo) scan(sc interface{ Scan(...any) error }) (model.Staff, error) {
	var (
		s       model.Staff
		kind    string
		byID    uint64
		deleted sql.NullTime
	)
	if err := sc.Scan(&s.ID, &s.Name, &s.Email, &s.ActualEmail, &s.PasswordHash, &s.NationalID, &s.Image,
		&kind, &byID, &s.CreatedAt, &s.UpdatedAt, &deleted); err != nil {
		return s, err
	}
	by, err := scanOwner(kind, byID)
	if err != nil {
		return s, err
	}
	s.Kind = r.kind
	s.CreatedBy = by
	s.DeletedAt = nullTimePtr(deleted)
	return s, nil
}

// Create issues the next id, derives the virtual email from it and
// inserts the row.  The max id includes soft-deleted rows so an issued
// email is never reused.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
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

	var maxID uint64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) FROM "+r.table+" FOR UPDATE").Scan(&maxID); err != nil {
		return err
	}
	s.ID = maxID + 1
	s.Kind = r.kind
	s.Email = model.VirtualEmail(r.kind, s.ID)
	if s.Image == "" {
		s.Image = model.DefaultImage
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO "+r.table+` (id, name, email, actual_email, password_hash, national_id, image, created_by_kind, created_by_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.ActualEmail, s.PasswordHash, s.NationalID, s.Image, string(s.CreatedBy.Kind), s.CreatedBy.ID)
	if err != nil {
		return mapWriteErr(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a live staff member.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	s, err := r.scan(r.db.QueryRowContext(ctx,
		"SELECT "+r.columns()+" FROM "+r.table+" WHERE id = ? AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns one page of live staff, newest first.
func (r *StaffRepo) List(ctx context.Context, filter StaffFilter, page Page) ([]model.Staff, int, error) {
	var w where
	w.add("deleted_at IS NULL")
	w.owner("created_by", filter.CreatedBy)
	if filter.Search != "" {
		p := likePattern(filter.Search)
		w.add("(name LIKE ? OR actual_email LIKE ? OR national_id LIKE ?)", p, p, p)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.table+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY created_at DESC, id DESC"
	args := w.args
	if filter.PinFirst > 0 {
		order = " ORDER BY (id = ?) DESC, created_at DESC, id DESC"
		args = append(args, filter.PinFirst)
	}
	limit, offset := page.Limit()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+r.columns()+" FROM "+r.table+w.sql()+order+" LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Staff, 0, limit)
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Update writes the editable fields.  An empty PasswordHash keeps the
// stored one.
func (r *StaffRepo) Update(ctx context.Context, s *model.Staff) error {
	q := "UPDATE " + r.table + " SET name = ?, actual_email = ?, national_id = ?, image = ?"
	args := []any{s.Name, s.ActualEmail, s.NationalID, s.Image}
	if s.PasswordHash != "" {
		q += ", password_hash = ?"
		args = append(args, s.PasswordHash)
	}
	q += " WHERE id = ? AND deleted_at IS NULL"
	args = append(args, s.ID)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	return expectRow(ctx, r.db, res, "SELECT 1 FROM "+r.table+" WHERE id = ? AND deleted_at IS NULL", s.ID)
}

// SoftDelete marks a staff member deleted.
func (r *StaffRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE "+r.table+" SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Taken reports whether another row of this kind, soft-deleted ones
// included, already uses value in column ("actual_email" or
// "national_id").
func (r *StaffRepo) Taken(ctx context.Context, column, value string, exceptID uint64) (bool, error) {
	return taken(ctx, r.db, r.table, column, value, exceptID)
}

var uniqueColumns = map[string]bool{"email": true, "actual_email": true, "national_id": true}

func taken(ctx context.Context, db *sql.DB, table, column, value string, exceptID uint64) (bool, error) {
	if !uniqueColumns[column] {
		return false, fmt.Errorf("repository: %q is not a unique column", column)
	}
	var one int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE "+column+" = ? AND id <> ? LIMIT 1", value, exceptID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
