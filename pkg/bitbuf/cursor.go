package bitbuf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned when an operation would move a cursor past the
// end of its buffer.
var ErrOutOfBounds = errors.New("bit cursor out of bounds")

// Cursor is a read/write position over a byte buffer.
type Cursor struct {
	buf    []byte
	owned  bool
	pos    int  // index of the byte under the cursor
	offset uint // bit within buf[pos], 0..7
}

// New allocates a zeroed capacity-byte buffer owned by the cursor.
func New(capacity int) *Cursor {
	return &Cursor{
		buf:   make([]byte, capacity),
		owned: true,
	}
}

// From wraps buf without taking ownership of it. Writes go straight to buf.
func From(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Owned reports whether the cursor allocated its own buffer.
func (c *Cursor) Owned() bool {
	return c.owned
}

// Bytes returns the whole underlying buffer, independent of the cursor position.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Capacity returns the buffer size in bytes.
func (c *Cursor) Capacity() int {
	return len(c.buf)
}

// Remaining returns the number of bytes from the byte under the cursor to
// the end of the buffer. A partially consumed byte still counts.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// BytePos returns the index of the byte under the cursor.
func (c *Cursor) BytePos() int {
	return c.pos
}

// BitOffset returns the bit offset within the current byte.
func (c *Cursor) BitOffset() uint {
	return c.offset
}

// Position returns the absolute bit position of the cursor.
func (c *Cursor) Position() int {
	return c.pos*8 + int(c.offset)
}

// RemainingBits returns how many bits can still be read or written.
func (c *Cursor) RemainingBits() int {
	return len(c.buf)*8 - c.Position()
}

// Clone returns an independent cursor over the same buffer at the same
// position. The clone never owns the buffer.
func (c *Cursor) Clone() *Cursor {
	return &Cursor{buf: c.buf, pos: c.pos, offset: c.offset}
}

// Reset moves the cursor back to the first bit.
func (c *Cursor) Reset() {
	c.pos = 0
	c.offset = 0
}

func (c *Cursor) check(bits int) error {
	if bits < 0 || bits > c.RemainingBits() {
		return fmt.Errorf("%w: %d bits at bit %d of %d", ErrOutOfBounds, bits, c.Position(), len(c.buf)*8)
	}
	return nil
}

// Advance moves the cursor forward by bits.
func (c *Cursor) Advance(bits int) error {
	if err := c.check(bits); err != nil {
		return err
	}
	total := c.offset + uint(bits)
	c.pos += int(total / 8)
	c.offset = total % 8
	return nil
}

// AlignByte advances to the start of the next byte unless the cursor is
// already byte aligned.
func (c *Cursor) AlignByte() error {
	if c.offset == 0 {
		return nil
	}
	return c.Advance(int(8 - c.offset))
}

func (c *Cursor) current() bool {
	return (c.buf[c.pos]>>(7-c.offset))&1 == 1
}

// NextBit reads the bit under the cursor and advances past it.
func (c *Cursor) NextBit() (bool, error) {
	if err := c.check(1); err != nil {
		return false, err
	}
	bit := c.current()
	c.step()
	return bit, nil
}

func (c *Cursor) step() {
	c.offset++
	if c.offset == 8 {
		c.offset = 0
		c.pos++
	}
}

// Pop copies the next bits bits into dst, left aligned, and advances past
// them. dst must hold at least Bits2Bytes(bits) bytes; bits of the last
// destination byte beyond the requested count are cleared.
func (c *Cursor) Pop(dst []byte, bits int) error {
	if err := c.check(bits); err != nil {
		return err
	}
	n := Bits2Bytes(bits)
	if len(dst) < n {
		return fmt.Errorf("bitbuf: pop of %d bits needs %d bytes, destination has %d", bits, n, len(dst))
	}

	shift := c.offset
	for k := 0; k < n; k++ {
		b := c.buf[c.pos+k] << shift
		// the final byte of the buffer has no successor to borrow from
		if shift != 0 && c.pos+k+1 < len(c.buf) {
			b |= c.buf[c.pos+k+1] >> (8 - shift)
		}
		dst[k] = b
	}
	if rem := bits % 8; rem != 0 {
		dst[n-1] &= 0xFF << (8 - rem)
	}

	return c.Advance(bits)
}

// ReadUint reads bits bits MSB-first and returns them right justified. Only
// the low 64 bits of wider fields are kept.
func (c *Cursor) ReadUint(bits int) (uint64, error) {
	if err := c.check(bits); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < bits; i++ {
		v <<= 1
		if c.current() {
			v |= 1
		}
		c.step()
	}
	return v, nil
}

// PeekUint is ReadUint without moving the cursor.
func (c *Cursor) PeekUint(bits int) (uint64, error) {
	return c.Clone().ReadUint(bits)
}

// WriteBit overwrites the bit under the cursor and advances past it.
func (c *Cursor) WriteBit(bit bool) error {
	if err := c.check(1); err != nil {
		return err
	}
	mask := byte(0x80) >> c.offset
	c.buf[c.pos] &^= mask
	if bit {
		c.buf[c.pos] |= mask
	}
	c.step()
	return nil
}

// WriteBlock writes the first bits bits of data MSB-first.
func (c *Cursor) WriteBlock(data []byte, bits int) error {
	if err := c.check(bits); err != nil {
		return err
	}
	if len(data) < Bits2Bytes(bits) {
		return fmt.Errorf("bitbuf: block of %d bits needs %d bytes, source has %d", bits, Bits2Bytes(bits), len(data))
	}
	for i := 0; i < bits; i++ {
		if err := c.WriteBit((data[i/8]>>(7-i%8))&1 == 1); err != nil {
			return err
		}
	}
	return nil
}

// WriteUint writes the low bits bits of v MSB-first. Fields wider than 64
// bits are zero filled at the top.
func (c *Cursor) WriteUint(v uint64, bits int) error {
	if err := c.check(bits); err != nil {
		return err
	}
	for i := bits - 1; i >= 0; i-- {
		if err := c.WriteBit(i < 64 && (v>>uint(i))&1 == 1); err != nil {
			return err
		}
	}
	return nil
}

// WriteZeros writes bits zero bits.
func (c *Cursor) WriteZeros(bits int) error {
	if err := c.check(bits); err != nil {
		return err
	}
	for i := 0; i < bits; i++ {
		if err := c.WriteBit(false); err != nil {
			return err
		}
	}
	return nil
}

// String dumps the bits from the cursor to the end of the buffer, grouped
// by byte.
func (c *Cursor) String() string {
	var sb strings.Builder
	probe := c.Clone()
	for probe.RemainingBits() > 0 {
		if probe.current() {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		probe.step()
		if probe.offset == 0 && probe.RemainingBits() > 0 {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
