package bitbuf

import "bytes"

// Bits2Bytes returns the number of bytes needed to hold bits bits.
func Bits2Bytes(bits int) int {
	if bits <= 0 {
		return 0
	}
	return (bits + 7) / 8
}

// CompareBits compares the first bits bits of a and b MSB-first and returns
// -1, 0 or +1 like bytes.Compare. Bits past the prefix are ignored.
func CompareBits(a, b []byte, bits int) int {
	full := bits / 8
	if c := bytes.Compare(a[:full], b[:full]); c != 0 {
		return c
	}

	rem := bits % 8
	if rem == 0 {
		return 0
	}

	mask := byte(0xFF) << (8 - rem)
	x, y := a[full]&mask, b[full]&mask
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// SwapBytes reverses field in place.
func SwapBytes(field []byte) {
	for i, j := 0, len(field)-1; i < j; i, j = i+1, j-1 {
		field[i], field[j] = field[j], field[i]
	}
}
