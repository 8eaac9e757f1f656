package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Floor represents a level of the hotel.  Number is generated by the
// system ("F0001", "F0002", ...) and never supplied by callers.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, 3..255 characters.
//  Number    – unique generated number.
//  Owner     – actor that controls the floor (created_by_kind/id).
//  RoomCount – number of rooms on the floor; filled by listing queries.
type Floor struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Number    string    `json:"number"`
	Owner     OwnerRef  `json:"owner"`
	RoomCount int       `json:"room_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	floorPrefix = "F"
	floorWidth  = 4
)

// FormatFloorNumber renders a sequence value as a fixed-width floor number.
func FormatFloorNumber(seq int) string {
	return fmt.Sprintf("%s%0*d", floorPrefix, floorWidth, seq)
}

// FloorSequence parses the numeric suffix of a floor number.  It returns
// false for values that were not produced by FormatFloorNumber.
func FloorSequence(number string) (int, bool) {
	if !strings.HasPrefix(number, floorPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(floorPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextFloorNumber returns the number that follows the highest existing
// one.  An empty highest value starts the sequence at F0001.
func NextFloorNumber(highest string) string {
	seq, ok := FloorSequence(highest)
	if !ok {
		seq = 0
	}
	return FormatFloorNumber(seq + 1)
}

// FloorStats summarises the floors visible to an actor.
type FloorStats struct {
	Total     int `json:"total"`
	WithRooms int `json:"with_rooms"`
	Empty     int `json:"empty"`
}
