// Package stream drives a codec over whole streams.
//
// A Consumer wraps a binary source (a byte slice or a memory mapped file)
// or a script source, and returns one call per Next until the end
// condition is met:
//
//   - NullTerminated: an opcode of zero with no function registered at zero.
//   - SizeBytes: a byte budget set with SetSize.
//   - SizeStatements: a call budget set with SetSize.
//
// The sentinel ends a stream in every mode, as does running out of input
// exactly at a call boundary. Encoding consumers write the sentinel after
// the last call in NullTerminated mode.
package stream
