package archive

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		data []byte
	}{
		{"simple capture", "session-1", []byte{0x08, 0x00, 0x00, 0x00, 0x80, 0x44, 0x42, 0x71, 0x48, 0x00}},
		{"empty name", "", []byte{0x01}},
		{"empty data", "nothing", []byte{}},
		{"both empty", "", []byte{}},
		{"large data", "big", bytes.Repeat([]byte{0xa5}, 10240)},
		{"unicode name", "🎯 capture", []byte{0xff}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry, err := NewEntry(tc.key, tc.data)
			require.NoError(t, err)

			encoded, err := entry.MarshalBinary()
			require.NoError(t, err)
			assert.Len(t, encoded, entryHeaderSize+len(tc.key)+len(tc.data))

			var decoded Entry
			require.NoError(t, decoded.UnmarshalBinary(encoded))

			assert.Equal(t, tc.key, string(decoded.Name))
			assert.True(t, bytes.Equal(tc.data, decoded.Data))
			assert.Equal(t, entry.Timestamp, decoded.Timestamp)
			assert.Equal(t, entry.CRC32, decoded.CRC32)
		})
	}
}

func TestEntry_Corruption(t *testing.T) {
	entry, err := NewEntry("capture", []byte{1, 2, 3, 4})
	require.NoError(t, err)
	encoded, err := entry.MarshalBinary()
	require.NoError(t, err)

	testCases := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flipped data bit", func(b []byte) []byte { b[len(b)-1] ^= 0x01; return b }},
		{"flipped name bit", func(b []byte) []byte { b[entryHeaderSize] ^= 0x80; return b }},
		{"bad crc", func(b []byte) []byte { b[0]++; return b }},
		{"changed timestamp", func(b []byte) []byte { b[12]++; return b }},
		{"truncated", func(b []byte) []byte { return b[:len(b)-1] }},
		{"trailing bytes", func(b []byte) []byte { return append(b, 0) }},
		{"short header", func(b []byte) []byte { return b[:10] }},
		{"oversized length", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:], 1<<20)
			return b
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.mutate(append([]byte(nil), encoded...))

			var e Entry
			err := e.UnmarshalBinary(data)
			assert.ErrorIs(t, err, ErrCorruption)
		})
	}
}

func TestEntry_Size(t *testing.T) {
	entry, err := NewEntry("key", []byte("value"))
	require.NoError(t, err)

	assert.Equal(t, uint32(3), entry.NameSize)
	assert.Equal(t, uint32(5), entry.DataSize)
	assert.Equal(t, 20+3+5, entry.Size())
	assert.False(t, entry.Time().IsZero())
}
