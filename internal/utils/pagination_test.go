package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePageClamps(t *testing.T) {
	cases := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 20, 1, 20},
		{"limit capped", 2, 500, 2, 100},
		{"passthrough", 4, 25, 4, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizePage(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, got.Page)
			assert.Equal(t, tc.wantLimit, got.Limit)
		})
	}
}

func TestSkip(t *testing.T) {
	assert.Equal(t, int64(0), PageRequest{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, int64(40), PageRequest{Page: 5, Limit: 10}.Skip())
}

func TestNewPaginationEnvelope(t *testing.T) {
	p := NewPagination(PageRequest{Page: 2, Limit: 10}, 45)
	assert.Equal(t, 5, p.TotalPages) // ceil(45/10)
	assert.Equal(t, int64(45), p.TotalItems)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)

	last := NewPagination(PageRequest{Page: 5, Limit: 10}, 45)
	assert.False(t, last.HasNextPage)
	assert.True(t, last.HasPrevPage)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(PageRequest{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
}

func TestNewPaginationExactMultiple(t *testing.T) {
	p := NewPagination(PageRequest{Page: 3, Limit: 10}, 30)
	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasNextPage)
}
