package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// BanFilter narrows ban listings.  BannedBy scopes to the issuing actor
// (nil for admins).
type BanFilter struct {
	BannedBy *model.OwnerRef
	Search   string
}

// BanRepo persists bans.  Revocation is a soft delete.
type BanRepo struct {
	db *sql.DB
}

// NewBanRepo returns a BanRepo bound to the given database.
func NewBanRepo(db *sql.DB) *BanRepo { return &BanRepo{db: db} }

var banColumns = `b.id, b.banned_kind, b.banned_id, b.banned_by_kind, b.banned_by_id, b.reason,
	b.is_permanent, b.expires_at, b.created_at, b.deleted_at, ` +
	nameOf("b.banned_kind", "b.banned_id") + `, ` + nameOf("b.banned_by_kind", "b.banned_by_id")

func scanBan(sc interface{ Scan(...any) error }) (model.Ban, error) {
	var (
		b                  model.Ban
		bannedKind, byKind string
		bannedID, byID     uint64
		expires, deleted   sql.NullTime
	)
	if err := sc.Scan(&b.ID, &bannedKind, &bannedID, &byKind, &byID, &b.Reason,
		&b.IsPermanent, &expires, &b.CreatedAt, &deleted, &b.BannedName, &b.BannedByName); err != nil {
		return b, err
	}
	var err error
	if b.Banned, err = scanOwner(bannedKind, bannedID); err != nil {
		return b, err
	}
	if b.BannedBy, err = scanOwner(byKind, byID); err != nil {
		return b, err
	}
	b.ExpiresAt = nullTimePtr(expires)
	b.DeletedAt = nullTimePtr(deleted)
	return b, nil
}

// FindActive returns the ban currently applying to ref, preferring
// permanent bans and then the latest expiry.  ErrNotFound means none.
func (r *BanRepo) FindActive(ctx context.Context, ref model.OwnerRef, now time.Time) (*model.Ban, error) {
	q := `SELECT ` + banColumns + ` FROM bans b
	      WHERE b.banned_kind = ? AND b.banned_id = ? AND b.deleted_at IS NULL
	        AND (b.is_permanent = 1 OR b.expires_at IS NULL OR b.expires_at > ?)
	      ORDER BY b.is_permanent DESC, b.expires_at DESC LIMIT 1`
	b, err := scanBan(r.db.QueryRowContext(ctx, q, string(ref.Kind), ref.ID, now.UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns one page of unrevoked bans, newest first.
func (r *BanRepo) List(ctx context.Context, filter BanFilter, page Page) ([]model.Ban, int, error) {
	var w where
	w.add("b.deleted_at IS NULL")
	w.owner("b.banned_by", filter.BannedBy)
	if filter.Search != "" {
		w.add("b.reason LIKE ?", likePattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bans b`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := page.Limit()
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+banColumns+` FROM bans b`+w.sql()+` ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?`,
		append(w.args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Ban, 0, limit)
	for rows.Next() {
		b, err := scanBan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

// GetByID loads an unrevoked ban.
func (r *BanRepo) GetByID(ctx context.Context, id uint64) (*model.Ban, error) {
	b, err := scanBan(r.db.QueryRowContext(ctx,
		`SELECT `+banColumns+` FROM bans b WHERE b.id = ? AND b.deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a ban.
func (r *BanRepo) Create(ctx context.Context, b *model.Ban) error {
	var expires any
	if b.ExpiresAt != nil {
		expires = b.ExpiresAt.UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bans (banned_kind, banned_id, banned_by_kind, banned_by_id, reason, is_permanent, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(b.Banned.Kind), b.Banned.ID, string(b.BannedBy.Kind), b.BannedBy.ID, b.Reason, b.IsPermanent, expires)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Revoke soft-deletes a ban.
func (r *BanRepo) Revoke(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bans SET deleted_at = NOW() WHERE id = ? AND deleted_at IS NULL`, id)
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
