package bitbuf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []byte("this is a test array\x00")

func checkInvariants(t *testing.T, c *Cursor) {
	t.Helper()
	assert.Equal(t, c.Capacity()-c.Remaining(), c.BytePos())
	assert.LessOrEqual(t, c.BitOffset(), uint(7))
}

func TestNew(t *testing.T) {
	c := New(100)

	assert.Equal(t, 100, c.Capacity())
	assert.True(t, c.Owned())
	assert.Equal(t, 0, c.Position())
	checkInvariants(t, c)
}

func TestFrom(t *testing.T) {
	buf := make([]byte, 100)
	c := From(buf)

	assert.Equal(t, 100, c.Capacity())
	assert.False(t, c.Owned())
	require.NoError(t, c.WriteBit(true))
	assert.Equal(t, byte(0x80), buf[0], "writes go through to the wrapped slice")
	checkInvariants(t, c)
}

func TestCursor_AdvanceSequential(t *testing.T) {
	const n = 10
	for step := 1; step < n*8; step++ {
		c := New(n)
		advanced := 0
		for advanced+step <= n*8 {
			require.NoError(t, c.Advance(step))
			advanced += step

			assert.Equal(t, advanced, c.BytePos()*8+int(c.BitOffset()))
			assert.Equal(t, n-c.BytePos(), c.Remaining())
			checkInvariants(t, c)
		}

		err := c.Advance(n*8 - advanced + 1)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "step=%d", step)
		assert.Equal(t, advanced, c.Position(), "failed advance must not move the cursor")
	}
}

func TestCursor_AdvanceMultiByte(t *testing.T) {
	c := New(4)
	require.NoError(t, c.Advance(3))
	require.NoError(t, c.Advance(21))
	assert.Equal(t, 3, c.BytePos())
	assert.Equal(t, uint(0), c.BitOffset())

	require.NoError(t, c.Advance(8))
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, 0, c.RemainingBits())
	assert.ErrorIs(t, c.Advance(1), ErrOutOfBounds)
}

func TestCursor_NextBit(t *testing.T) {
	c := From(sample)
	for i, b := range sample {
		for shift := 7; shift >= 0; shift-- {
			bit, err := c.NextBit()
			require.NoError(t, err)
			assert.Equal(t, (b>>uint(shift))&1 == 1, bit, "byte %d bit %d", i, 7-shift)
			assert.Equal(t, i*8+(8-shift), c.Position())
			checkInvariants(t, c)
		}
	}

	_, err := c.NextBit()
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCursor_Pop(t *testing.T) {
	dest := make([]byte, len(sample))
	for bits := 1; bits <= len(sample)*8; bits++ {
		c := From(sample)
		require.NoError(t, c.Pop(dest, bits))

		assert.Equal(t, 0, CompareBits(sample, dest, bits), "bits=%d", bits)
		assert.Equal(t, bits, c.Position())
		checkInvariants(t, c)
	}
}

func TestCursor_PopUnaligned(t *testing.T) {
	src := []byte{0b10110011, 0b01010101, 0b11110000}

	c := From(src)
	require.NoError(t, c.Advance(3))

	dst := make([]byte, 2)
	require.NoError(t, c.Pop(dst, 13))
	assert.Equal(t, []byte{0b10011010, 0b10101000}, dst)
	assert.Equal(t, 16, c.Position())

	// the last byte has no successor to merge from
	dst = make([]byte, 1)
	c = From(src)
	require.NoError(t, c.Advance(20))
	require.NoError(t, c.Pop(dst, 4))
	assert.Equal(t, byte(0), dst[0])

	assert.ErrorIs(t, From(src).Pop(make([]byte, 4), 25), ErrOutOfBounds)
}

func TestCursor_WriteBit(t *testing.T) {
	dest := bytes.Repeat([]byte(" "), len(sample))

	c := From(dest)
	for i := 0; i < len(sample)*8; i++ {
		require.NoError(t, c.WriteBit((sample[i/8]>>uint(7-i%8))&1 == 1))
		assert.Equal(t, 0, CompareBits(sample, dest, i+1))
		assert.Equal(t, i+1, c.Position())
		checkInvariants(t, c)
	}

	assert.ErrorIs(t, c.WriteBit(true), ErrOutOfBounds)
}

func TestCursor_WriteBlock(t *testing.T) {
	for bits := 1; bits <= len(sample)*8; bits++ {
		c := New(len(sample))
		for i := range c.Bytes() {
			c.Bytes()[i] = 1
		}

		require.NoError(t, c.WriteBlock(sample, bits))
		assert.Equal(t, 0, CompareBits(sample, c.Bytes(), bits), "bits=%d", bits)
		assert.Equal(t, bits, c.Position())
		checkInvariants(t, c)
	}
}

func TestCursor_ReadWriteUint(t *testing.T) {
	testCases := []struct {
		name  string
		skip  int
		value uint64
		bits  int
	}{
		{"aligned byte", 0, 0xAB, 8},
		{"unaligned nibble", 3, 0x9, 4},
		{"crosses bytes", 5, 0x3FF, 10},
		{"full word", 1, 0xDEADBEEFCAFEF00D, 64},
		{"single bit", 7, 1, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := New(10)
			require.NoError(t, w.Advance(tc.skip))
			require.NoError(t, w.WriteUint(tc.value, tc.bits))

			r := From(w.Bytes())
			require.NoError(t, r.Advance(tc.skip))

			peeked, err := r.PeekUint(tc.bits)
			require.NoError(t, err)
			assert.Equal(t, tc.value, peeked)
			assert.Equal(t, tc.skip, r.Position(), "peek must not move the cursor")

			got, err := r.ReadUint(tc.bits)
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
			assert.Equal(t, tc.skip+tc.bits, r.Position())
		})
	}
}

func TestCursor_WriteUintTruncates(t *testing.T) {
	c := New(1)
	require.NoError(t, c.WriteUint(0xFF, 3))
	assert.Equal(t, byte(0b11100000), c.Bytes()[0])
}

func TestCursor_AlignByte(t *testing.T) {
	c := New(2)
	require.NoError(t, c.AlignByte())
	assert.Equal(t, 0, c.Position())

	require.NoError(t, c.Advance(3))
	require.NoError(t, c.AlignByte())
	assert.Equal(t, 8, c.Position())
}

func TestCursor_String(t *testing.T) {
	c := From([]byte{0xA5, 0x0F})
	assert.Equal(t, "10100101 00001111", c.String())

	require.NoError(t, c.Advance(4))
	assert.Equal(t, "0101 00001111", c.String())
}
