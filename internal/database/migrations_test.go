package database

import (
	"context"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrdered(t *testing.T) {
	prev := 0
	for _, m := range Migrations() {
		assert.Greater(t, m.Version, prev)
		assert.NotEmpty(t, m.SQL)
		prev = m.Version
	}
}

func TestMigrateSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	all := Migrations()
	last := all[len(all)-1]

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(last.Version - 1))
	mock.ExpectExec("INSERT IGNORE INTO countries").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(last.Version, last.Description).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedCountriesQuotesEveryName(t *testing.T) {
	q := seedCountries()
	assert.Contains(t, q, "('United Kingdom')")
	assert.Equal(t, len(defaultCountries), strings.Count(q, "('"))
}
