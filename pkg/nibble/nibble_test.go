package nibble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray_GetSet(t *testing.T) {
	a := New(5)
	require.Len(t, a, 3)
	assert.Equal(t, 6, a.Len())

	a.Set(0, 0x3)
	a.Set(1, 0xC)
	a.Set(4, 0x1F) // masked to 4 bits
	assert.Equal(t, byte(0xC3), a[0], "low nibble holds the even index")
	assert.Equal(t, byte(0x3), a.Get(0))
	assert.Equal(t, byte(0xC), a.Get(1))
	assert.Equal(t, byte(0xF), a.Get(4))
	assert.Equal(t, byte(0x0), a.Get(5))

	a.Set(1, 0x0)
	assert.Equal(t, byte(0x03), a[0], "overwrite keeps the neighbour")
}

func TestArray_Fill(t *testing.T) {
	tests := []struct {
		name     string
		start, n int
	}{
		{"Aligned", 0, 8},
		{"OddStart", 1, 6},
		{"OddEnd", 2, 5},
		{"Single", 3, 1},
		{"Empty", 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(10)
			a.Fill(tt.start, tt.n, 0x9)
			for i := 0; i < a.Len(); i++ {
				want := byte(0)
				if i >= tt.start && i < tt.start+tt.n {
					want = 0x9
				}
				assert.Equal(t, want, a.Get(i), "nibble %d", i)
			}
		})
	}
}

func TestBit(t *testing.T) {
	buf := make([]byte, 2)
	SetBit(buf, 0, true)
	SetBit(buf, 9, true)
	assert.Equal(t, []byte{0x01, 0x02}, buf, "LSB-first bit order")
	assert.True(t, Bit(buf, 0))
	assert.False(t, Bit(buf, 1))
	assert.True(t, Bit(buf, 9))

	SetBit(buf, 0, false)
	assert.False(t, Bit(buf, 0))
}
