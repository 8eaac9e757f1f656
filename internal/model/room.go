package model

import (
	"fmt"
	"math"
	"time"
)

// Room belongs to a floor and carries its nightly price in minor units
// (cents).  IsAvailable is cleared while an approved reservation holds it.
type Room struct {
	ID               uint64    `json:"id"`
	Name             string    `json:"name"`
	Number           string    `json:"number"`
	Capacity         int       `json:"capacity"`
	Price            int64     `json:"price"`
	FloorID          uint64    `json:"floor_id"`
	IsAvailable      bool      `json:"is_available"`
	Owner            OwnerRef  `json:"owner"`
	ReservationCount int       `json:"reservation_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PriceDisplay renders the stored price in major units.
func (r Room) PriceDisplay() string { return FormatMinorUnits(r.Price) }

// MaxNightlyPrice bounds a room price in major units.
const MaxNightlyPrice = 1_000_000

// MinorUnits converts a major-unit amount to minor units, rounding half
// away from zero.  Amounts outside [0, MaxNightlyPrice] are rejected so the
// conversion never overflows.
func MinorUnits(major float64) (int64, error) {
	if math.IsNaN(major) || major < 0 || major > MaxNightlyPrice {
		return 0, fmt.Errorf("price %v outside 0..%d", major, MaxNightlyPrice)
	}
	return int64(math.Round(major * 100)), nil
}

// MajorUnits is the inverse of MinorUnits for display.
func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// FormatMinorUnits renders minor units as "12.34".
func FormatMinorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// RoomStats summarises rooms visible to an actor.
type RoomStats struct {
	Total     int `json:"total"`
	Reserved  int `json:"reserved"`
	Available int `json:"available"`
}
