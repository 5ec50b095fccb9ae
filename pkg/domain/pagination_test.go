package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		from, size int
		wantPage   int
		wantOffset int
	}{
		{0, 10, 1, 0},
		{10, 10, 2, 10},
		{20, 10, 3, 20},
		// from is truncated to a page boundary, not used as a raw offset
		{5, 10, 1, 0},
		{15, 10, 2, 10},
		{1, 1, 2, 1},
		{7, 3, 3, 6},
	}
	for _, tt := range tests {
		page := NewPageRequest(tt.from, tt.size)
		assert.Equal(t, tt.wantPage, page.Page, "from=%d size=%d", tt.from, tt.size)
		assert.Equal(t, tt.size, page.Size)
		assert.Equal(t, tt.wantOffset, page.Offset(), "from=%d size=%d", tt.from, tt.size)
	}
}
