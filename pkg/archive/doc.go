// Package archive keeps captured binary streams in a pebble database so
// they can be decoded again later.
//
// Each capture is stored under "capture/<ksuid>" as an entry:
//
//	[CRC32(4)][NameSize(4)][DataSize(4)][Timestamp(8)][Name][Data]
//
// Integers are little-endian. The CRC covers every field after itself and
// is checked on every read.
package archive
