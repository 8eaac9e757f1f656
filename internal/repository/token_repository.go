package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// TokenRepo persists/validates refresh tokens.  Only the SHA-256 hash is
// stored, bound to the owner and the session it was issued for.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (owner_kind, owner_id, session_id, token_hash, expires_at) VALUES (?,?,?,?,?)",
		string(t.Owner.Kind), t.Owner.ID, t.SessionID, t.TokenHash, t.ExpiresAt.UTC())
	return err
}

// ValidateRefresh returns the token row if it is neither revoked nor
// expired at now; otherwise ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (*model.RefreshToken, error) {
	var (
		t       model.RefreshToken
		kind    string
		ownerID uint64
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, owner_kind, owner_id, session_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &kind, &ownerID, &t.SessionID, &t.TokenHash, &t.ExpiresAt, &revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if revoked.Valid || !now.Before(t.ExpiresAt) {
		return nil, ErrNotFound
	}
	if t.Owner, err = scanOwner(kind, ownerID); err != nil {
		return nil, err
	}
	return &t, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeSession revokes every active token issued for a session.
func (r *TokenRepo) RevokeSession(ctx context.Context, sessionID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE session_id=? AND revoked_at IS NULL",
		sessionID)
	return err
}

// PurgeExpired deletes tokens that expired before now or were revoked,
// returning how many rows went.
func (r *TokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked_at IS NOT NULL", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
