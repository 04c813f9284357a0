package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	t.Run("offset math", func(t *testing.T) {
		for _, n := range []int{1, 2, 3, 10, 500} {
			p := NewPage(n)
			assert.Equal(t, n, p.Number)
			assert.Equal(t, DefaultPageSize, p.Size)
			assert.Equal(t, (n-1)*DefaultPageSize, p.Offset)
		}
	})

	t.Run("huge page numbers keep the offset non-negative", func(t *testing.T) {
		for _, n := range []int{math.MaxInt, math.MaxInt / 2, maxPageNumber + 1} {
			p := NewPage(n)
			assert.Equal(t, maxPageNumber, p.Number)
			assert.GreaterOrEqual(t, p.Offset, 0)
		}
	})

	t.Run("fails closed to page 1", func(t *testing.T) {
		for _, n := range []int{0, -1, -42} {
			p := NewPage(n)
			assert.Equal(t, 1, p.Number)
			assert.Equal(t, 0, p.Offset)
		}
	})
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantNumber int
		wantOffset int
	}{
		{"absent", "", 1, 0},
		{"non-numeric", "abc", 1, 0},
		{"first page", "1", 1, 0},
		{"second page", "2", 2, 12},
		{"far past the data", "9999", 9999, 9998 * 12},
		{"negative", "-3", 1, 0},
		{"near int max", "922337203685477580", maxPageNumber, (maxPageNumber - 1) * DefaultPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePage(tt.raw)
			assert.Equal(t, tt.wantNumber, p.Number)
			assert.Equal(t, DefaultPageSize, p.Size)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}
