// Package repository holds the MySQL data access layer.  Sentinel errors
// defined here let the service layer tell failure scenarios apart
// without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by id matches no live row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
var ErrDuplicate = errors.New("duplicate entry")

// ErrRoomUnavailable is returned when the conditional availability update
// matched no row: the room is already held or does not exist.
var ErrRoomUnavailable = errors.New("room unavailable")

// ErrConflict is returned when a delete cannot proceed because dependent
// rows still exist.
var ErrConflict = errors.New("conflict")

const mysqlDuplicateEntry = 1062

// mapWriteErr turns MySQL duplicate-key failures into ErrDuplicate.
func mapWriteErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	return err
}
