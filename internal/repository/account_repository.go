package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// principalTables is the closed map from actor kind to its table.
var principalTables = map[model.ActorKind]string{
	model.KindAdmin:        "admins",
	model.KindManager:      "managers",
	model.KindReceptionist: "receptionists",
	model.KindClient:       "clients",
}

func tableFor(kind model.ActorKind) (string, error) {
	t, ok := principalTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: kind %q", model.ErrInvalidOwner, kind)
	}
	return t, nil
}

// nameOf renders a SQL expression resolving the display name behind a
// polymorphic (kind, id) column pair.
func nameOf(kindCol, idCol string) string {
	expr := "COALESCE("
	for i, k := range model.ActorKinds {
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("(SELECT p.name FROM %s p WHERE %s = '%s' AND p.id = %s)", principalTables[k], kindCol, k, idCol)
	}
	return expr + ", '')"
}

// AccountRepo resolves principals across the four actor tables.
type AccountRepo struct {
	db *sql.DB
}

// NewAccountRepo returns an AccountRepo bound to the given database.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{db: db} }

// Exists reports whether ref points at a row of its kind.  Soft-deleted
// rows count only when includeTrashed is set.
func (r *AccountRepo) Exists(ctx context.Context, ref model.OwnerRef, includeTrashed bool) (bool, error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return false, err
	}
	q := "SELECT 1 FROM " + table + " WHERE id = ?"
	if !includeTrashed {
		q += " AND deleted_at IS NULL"
	}
	var one int
	if err := r.db.QueryRowContext(ctx, q, ref.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindCredentials looks up a live principal of the given kind by login
// email.
func (r *AccountRepo) FindCredentials(ctx context.Context, kind model.ActorKind, email string) (*model.Credentials, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var (
		c  model.Credentials
		id uint64
	)
	err = r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash FROM "+table+" WHERE email = ? AND deleted_at IS NULL LIMIT 1", email).
		Scan(&id, &c.Name, &c.Email, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.Ref = model.OwnerRef{Kind: kind, ID: id}
	return &c, nil
}

// Principal loads the display fields of a live principal.
func (r *AccountRepo) Principal(ctx context.Context, ref model.OwnerRef) (*model.Principal, error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	p := model.Principal{Ref: ref}
	err = r.db.QueryRowContext(ctx,
		"SELECT name, email FROM "+table+" WHERE id = ? AND deleted_at IS NULL", ref.ID).Scan(&p.Name, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ContactEmail returns where mail for ref should go: the actual address
// for staff, the login email otherwise.
func (r *AccountRepo) ContactEmail(ctx context.Context, ref model.OwnerRef) (string, string, error) {
	table, err := tableFor(ref.Kind)
	if err != nil {
		return "", "", err
	}
	col := "email"
	if ref.Kind == model.KindManager || ref.Kind == model.KindReceptionist {
		col = "actual_email"
	}
	var name, email string
	err = r.db.QueryRowContext(ctx,
		"SELECT name, "+col+" FROM "+table+" WHERE id = ? AND deleted_at IS NULL", ref.ID).Scan(&name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	return name, email, nil
}

// Summaries lists id/name/email of every live principal of a kind,
// ordered by name.
func (r *AccountRepo) Summaries(ctx context.Context, kind model.ActorKind) ([]model.AccountSummary, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, email FROM "+table+" WHERE deleted_at IS NULL ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AccountSummary{}
	for rows.Next() {
		var s model.AccountSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
