package repository

import (
	"context"
	"database/sql"
	"errors"
)

// CountryRepo reads the reference list of country names.
type CountryRepo struct {
	db *sql.DB
}

// NewCountryRepo returns a CountryRepo bound to the given database.
func NewCountryRepo(db *sql.DB) *CountryRepo { return &CountryRepo{db: db} }

// List returns every country name in alphabetical order.
func (r *CountryRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM countries ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Exists reports whether name is a known country.
func (r *CountryRepo) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM countries WHERE name = ?", name).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
