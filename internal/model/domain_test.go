package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFloorNumbering(t *testing.T) {
	assert.Equal(t, "F0001", NextFloorNumber(""))
	assert.Equal(t, "F0002", NextFloorNumber("F0001"))
	assert.Equal(t, "F0100", NextFloorNumber("F0099"))
	assert.Equal(t, "F10000", NextFloorNumber("F9999"))

	prev := ""
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		next := NextFloorNumber(prev)
		assert.False(t, seen[next])
		seen[next] = true
		if prev != "" {
			a, _ := FloorSequence(prev)
			b, _ := FloorSequence(next)
			assert.Greater(t, b, a)
		}
		assert.Len(t, next, 5)
		prev = next
	}
}

func minor(t *testing.T, major float64) int64 {
	t.Helper()
	v, err := MinorUnits(major)
	require.NoError(t, err)
	return v
}

func TestMinorUnitsRoundTrip(t *testing.T) {
	assert.Equal(t, int64(1999), minor(t, 19.99))
	assert.Equal(t, "19.99", FormatMinorUnits(1999))
	assert.InDelta(t, 19.99, MajorUnits(1999), 1e-9)
	assert.Equal(t, int64(5000), minor(t, 50))
	assert.Equal(t, int64(100000000), minor(t, MaxNightlyPrice))
	assert.Equal(t, "0.05", FormatMinorUnits(5))
	assert.Equal(t, "-1.50", FormatMinorUnits(-150))
}

func TestMinorUnitsRejectsOutOfRange(t *testing.T) {
	for _, major := range []float64{-0.01, MaxNightlyPrice + 0.01, 1e18, math.NaN(), math.Inf(1)} {
		_, err := MinorUnits(major)
		assert.Error(t, err, "%v", major)
	}
}

func TestReservationPrice(t *testing.T) {
	cases := []struct {
		nightly  int64
		in, out  string
		expected int64
	}{
		{1000, "2025-01-01", "2025-01-04", 3000},
		{1000, "2025-01-01", "2025-01-01", 1000},
		{5000, "2025-03-10", "2025-03-12", 10000},
	}
	for _, tc := range cases {
		got, err := ReservationPrice(tc.nightly, day(tc.in), day(tc.out))
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got)
	}
}

func TestReservationPriceOverflow(t *testing.T) {
	_, err := ReservationPrice(math.MaxInt64/2, day("2025-01-01"), day("2025-01-04"))
	assert.ErrorIs(t, err, ErrPriceOverflow)

	_, err = ReservationPrice(-1, day("2025-01-01"), day("2025-01-02"))
	assert.ErrorIs(t, err, ErrPriceOverflow)

	got, err := ReservationPrice(math.MaxInt64, day("2025-01-01"), day("2025-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestReservationStatus(t *testing.T) {
	r := Reservation{}
	assert.Equal(t, StatusPendingApproval, r.Status())
	assert.True(t, r.Status().CanApprove())
	assert.False(t, r.HoldsRoom())

	r.IsApproved = true
	assert.Equal(t, StatusApproved, r.Status())
	assert.False(t, r.Status().CanApprove())
	assert.True(t, r.HoldsRoom())

	now := time.Now()
	r.DeletedAt = &now
	assert.Equal(t, StatusCancelled, r.Status())
	assert.False(t, r.Status().CanEdit())
	assert.False(t, r.HoldsRoom())
}

func TestBanIsActive(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	cases := []struct {
		name string
		ban  Ban
		want bool
	}{
		{"permanent", Ban{IsPermanent: true}, true},
		{"future expiry", Ban{ExpiresAt: &tomorrow}, true},
		{"expired", Ban{ExpiresAt: &yesterday}, false},
		{"no expiry", Ban{}, true},
		{"revoked permanent", Ban{IsPermanent: true, DeletedAt: &yesterday}, false},
		{"revoked temporary", Ban{ExpiresAt: &tomorrow, DeletedAt: &yesterday}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ban.IsActive(now))
		})
	}
}

func TestBanMessage(t *testing.T) {
	exp := time.Date(2025, 6, 3, 15, 4, 0, 0, time.UTC)
	temp := Ban{Reason: "repeated no-shows", ExpiresAt: &exp}
	assert.Equal(t,
		"Your account has been banned. Reason: repeated no-shows This ban will expire on June 3, 2025 at 3:04 PM.",
		temp.Message())

	perm := Ban{Reason: "fraud", IsPermanent: true}
	assert.Equal(t, "Your account has been banned. Reason: fraud This is a permanent ban.", perm.Message())
}

func TestBanDurationExpiry(t *testing.T) {
	now := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	exp, perm, err := BanOneDay.Expiry(now)
	require.NoError(t, err)
	assert.False(t, perm)
	assert.Equal(t, now.AddDate(0, 0, 1), *exp)

	exp, _, err = BanOneWeek.Expiry(now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), *exp)

	exp, _, err = BanOneMonth.Expiry(now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 1, 0), *exp)

	exp, perm, err = BanPermanent.Expiry(now)
	require.NoError(t, err)
	assert.True(t, perm)
	assert.Nil(t, exp)

	_, _, err = BanDuration("forever").Expiry(now)
	assert.ErrorIs(t, err, ErrUnknownDuration)
}

func TestCanBan(t *testing.T) {
	assert.True(t, CanBan(KindAdmin, KindManager))
	assert.True(t, CanBan(KindAdmin, KindClient))
	assert.True(t, CanBan(KindManager, KindClient))
	assert.True(t, CanBan(KindManager, KindReceptionist))
	assert.False(t, CanBan(KindManager, KindManager))
	assert.False(t, CanBan(KindReceptionist, KindClient))
	assert.False(t, CanBan(KindAdmin, KindAdmin))
}

func TestVirtualEmail(t *testing.T) {
	assert.Equal(t, "manager.12@manager.com", VirtualEmail(KindManager, 12))
	assert.Equal(t, "receptionist.3@receptionist.com", VirtualEmail(KindReceptionist, 3))
}
