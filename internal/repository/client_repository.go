package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// ClientRepo persists hotel guests.
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

const clientColumns = `id, name, email, password_hash, national_id, country, gender, image,
	created_by_kind, created_by_id, created_at, updated_at, deleted_at`

func scanClient(sc interface{ Scan(...any) error }) (model.Client, error) {
	var (
		c       model.Client
		image   sql.NullString
		kind    string
		byID    uint64
		deleted sql.NullTime
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.NationalID, &c.Country, &c.Gender, &image,
		&kind, &byID, &c.CreatedAt, &c.UpdatedAt, &deleted); err != nil {
		return c, err
	}
	by, err := scanOwner(kind, byID)
	if err != nil {
		return c, err
	}
	c.CreatedBy = by
	c.Image = nullStringPtr(image)
	c.DeletedAt = nullTimePtr(deleted)
	return c, nil
}

// Create inserts a client.  A zero CreatedBy marks self-registration: the
// row is inserted and then pointed at itself within one transaction.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) error {
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

	self := c.CreatedBy.IsZero()
	by := c.CreatedBy
	if self {
		by = model.OwnerRef{Kind: model.KindClient}
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO clients (name, email, password_hash, national_id, country, gender, image, created_by_kind, created_by_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Email, c.PasswordHash, c.NationalID, c.Country, c.Gender, c.Image, string(by.Kind), by.ID)
	if err != nil {
		return mapWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if self {
		if _, err := tx.ExecContext(ctx, `UPDATE clients SET created_by_id = ? WHERE id = ?`, c.ID, c.ID); err != nil {
			return err
		}
		c.CreatedBy = model.OwnerRef{Kind: model.KindClient, ID: c.ID}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID loads a live client.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ? AND deleted_at IS NULL", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns one page of live clients, newest first.
func (r *ClientRepo) List(ctx context.Context, search string, page Page) ([]model.Client, int, error) {
	var w where
	w.add("deleted_at IS NULL")
	if search != "" {
		p := likePattern(search)
		w.add("(name LIKE ? OR email LIKE ? OR national_id LIKE ?)", p, p, p)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients"+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := page.Limit()
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+clientColumns+" FROM clients"+w.sql()+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]model.Client, 0, limit)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Taken reports whether any client already uses value in column
// ("email" or "national_id").
func (r *ClientRepo) Taken(ctx context.Context, column, value string) (bool, error) {
	return taken(ctx, r.db, "clients", column, value, 0)
}
