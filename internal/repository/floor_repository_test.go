package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

func TestFloorCreateNumbersFromHighest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	owner := model.MustOwnerRef(model.KindManager, 7)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT number FROM floors ORDER BY .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow("F0009"))
	mock.ExpectExec("INSERT INTO floors").
		WithArgs("Lobby", "F0010", "manager", uint64(7)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	f := &model.Floor{Name: "Lobby", Owner: owner}
	require.NoError(t, NewFloorRepo(db).Create(context.Background(), f))
	assert.Equal(t, uint64(3), f.ID)
	assert.Equal(t, "F0010", f.Number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorCreateStartsAtFirstNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT number FROM floors`).WillReturnRows(sqlmock.NewRows([]string{"number"}))
	mock.ExpectExec("INSERT INTO floors").
		WithArgs("Ground", "F0001", "admin", uint64(1)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	f := &model.Floor{Name: "Ground", Owner: model.MustOwnerRef(model.KindAdmin, 1)}
	require.NoError(t, NewFloorRepo(db).Create(context.Background(), f))
	assert.Equal(t, "F0001", f.Number)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorCreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT number FROM floors`).WillReturnRows(sqlmock.NewRows([]string{"number"}).AddRow("F0002"))
	mock.ExpectExec("INSERT INTO floors").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	f := &model.Floor{Name: "Roof", Owner: model.MustOwnerRef(model.KindAdmin, 1)}
	assert.ErrorIs(t, NewFloorRepo(db).Create(context.Background(), f), assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorDeleteWithRoomsConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM floors").WithArgs(uint64(2), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM floors WHERE id").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.ErrorIs(t, NewFloorRepo(db).Delete(context.Background(), 2), ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM floors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM floors WHERE id").WillReturnRows(sqlmock.NewRows([]string{"1"}))

	assert.ErrorIs(t, NewFloorRepo(db).Delete(context.Background(), 9), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorListScopesToOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := model.MustOwnerRef(model.KindManager, 7)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM floors f WHERE f.created_by_kind = \? AND f.created_by_id = \?`).
		WithArgs("manager", uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM floors f WHERE f.created_by_kind = \? AND f.created_by_id = \? ORDER BY`).
		WithArgs("manager", uint64(7), PerPage, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "number", "kind", "owner", "created", "updated", "rooms"}).
			AddRow(1, "Lobby", "F0001", "manager", 7, now, now, 3))

	floors, total, err := NewFloorRepo(db).List(context.Background(), FloorFilter{Owner: &owner}, Page{Number: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, floors, 1)
	assert.Equal(t, 3, floors[0].RoomCount)
	assert.True(t, floors[0].Owner.Is(owner))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFloorStatsSplitsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnRows(sqlmock.NewRows([]string{"total", "with"}).AddRow(5, 3))

	s, err := NewFloorRepo(db).Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.FloorStats{Total: 5, WithRooms: 3, Empty: 2}, s)
}
