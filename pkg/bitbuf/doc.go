// Package bitbuf provides a cursor over a byte buffer that is addressable at
// single-bit granularity.
//
// # Bit Numbering
//
// Bit 0 of a byte is its most significant bit. Multi-bit fields are packed
// MSB-first with no padding between them, including across byte boundaries:
//
//	byte   0               1
//	      +---------------+---------------+
//	      |7 6 5 4 3 2 1 0|7 6 5 4 3 2 1 0|
//	      +---------------+---------------+
//	bit    0 1 2 3 4 5 6 7 8 9 ...
//
// # Ownership
//
// A Cursor created with New allocates and owns its buffer. A Cursor created
// with From wraps a caller-owned slice and writes through to it. In both
// cases the cursor never grows the buffer: any read, write or advance that
// would move past the last bit fails with ErrOutOfBounds and leaves the
// cursor where it was.
//
// # Thread Safety
//
// A Cursor has no internal synchronization and must be used by one goroutine
// at a time.
package bitbuf
