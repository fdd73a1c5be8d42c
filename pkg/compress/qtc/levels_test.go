package qtc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		w, h uint16
		want int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{2, 1, 1},
		{3, 3, 2},
		{4, 4, 2},
		{5, 1, 3},
		{1, 8, 3},
		{32, 32, 5},
		{320, 144, 9},
		{16384, 1, 14},
		{65535, 65535, 16},
	}
	for _, tt := range tests {
		got, err := Levels(tt.w, tt.h)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Levels(%d, %d)", tt.w, tt.h)
	}

	for _, dims := range [][2]uint16{{0, 0}, {0, 5}, {5, 0}} {
		_, err := Levels(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestNodeCount(t *testing.T) {
	assert.Equal(t, 0, NodeCount(0))
	assert.Equal(t, 1, NodeCount(1))
	assert.Equal(t, 5, NodeCount(2))
	assert.Equal(t, 21, NodeCount(3))
	assert.Equal(t, 85, NodeCount(4))
	for r := 1; r < 12; r++ {
		// the last level holds 4^(r-1) nodes
		assert.Equal(t, 1<<(2*(r-1)), NodeCount(r)-LevelStart(r-1))
		assert.Equal(t, NodeCount(r)/4, NodeCount(r-1))
	}
}
