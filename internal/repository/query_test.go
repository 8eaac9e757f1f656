package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLimit(t *testing.T) {
	cases := []struct {
		page   int
		offset int
	}{
		{0, 0},
		{-4, 0},
		{1, 0},
		{3, 20},
		{MaxPage, (MaxPage - 1) * PerPage},
		{math.MaxInt, (MaxPage - 1) * PerPage},
	}
	for _, tc := range cases {
		limit, offset := Page{Number: tc.page}.Limit()
		assert.Equal(t, PerPage, limit)
		assert.Equal(t, tc.offset, offset, "page %d", tc.page)
		assert.GreaterOrEqual(t, offset, 0)
	}
}
