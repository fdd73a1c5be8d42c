package morton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		x, y uint16
		want Code
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 0, 4},
		{3, 3, 15},
		{0xFFFF, 0, 0x55555555},
		{0, 0xFFFF, 0xAAAAAAAA},
		{0xFFFF, 0xFFFF, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		got := Encode(tt.x, tt.y)
		assert.Equal(t, tt.want, got, "Encode(%d, %d)", tt.x, tt.y)
		x, y := got.Decode()
		assert.Equal(t, tt.x, x)
		assert.Equal(t, tt.y, y)
	}
}

func TestIncrements(t *testing.T) {
	coords := []uint16{0, 1, 2, 3, 7, 8, 100, 255, 1023, 4095, 0x7FFF, 0xFFFE}
	for _, x := range coords {
		for _, y := range coords {
			c := Encode(x, y)
			assert.Equal(t, Encode(x+1, y), c.IncX(), "IncX(%d, %d)", x, y)
			assert.Equal(t, Encode(x, y+1), c.IncY(), "IncY(%d, %d)", x, y)
			assert.Equal(t, Encode(0, y), c.ResetX(), "ResetX(%d, %d)", x, y)
			assert.Equal(t, Encode(x, 0), c.ResetY(), "ResetY(%d, %d)", x, y)
		}
	}
}

func TestRowScan(t *testing.T) {
	// walking a 4x4 grid row by row with increments visits every code once
	seen := map[Code]bool{}
	row := Code(0)
	for y := 0; y < 4; y++ {
		c := row
		for x := 0; x < 4; x++ {
			seen[c] = true
			c = c.IncX()
		}
		row = row.IncY()
	}
	assert.Len(t, seen, 16)
	for c := Code(0); c < 16; c++ {
		assert.True(t, seen[c], "code %d", c)
	}
}
