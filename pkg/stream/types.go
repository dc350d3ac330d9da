package stream

import (
	"fmt"
	"strings"
	"time"

	"github.com/ssargent/binscript/pkg/codec"
)

// Direction selects what a Consumer translates.
type Direction int

const (
	Decode Direction = iota // binary to calls
	Encode                  // script to binary
)

func (d Direction) String() string {
	switch d {
	case Decode:
		return "decode"
	case Encode:
		return "encode"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "decode", "bin2script":
		return Decode, nil
	case "encode", "script2bin":
		return Encode, nil
	}
	return Decode, fmt.Errorf("unknown direction %q", s)
}

// EndMode selects how a stream ends. The null opcode sentinel ends a
// stream in every mode; the size modes add a budget on top of it.
type EndMode int

const (
	NullTerminated EndMode = iota
	SizeBytes
	SizeStatements
)

func (m EndMode) String() string {
	switch m {
	case NullTerminated:
		return "null"
	case SizeBytes:
		return "bytes"
	case SizeStatements:
		return "statements"
	}
	return fmt.Sprintf("endmode(%d)", int(m))
}

func ParseEndMode(s string) (EndMode, error) {
	switch strings.ToLower(s) {
	case "", "null":
		return NullTerminated, nil
	case "bytes":
		return SizeBytes, nil
	case "statements", "calls":
		return SizeStatements, nil
	}
	return NullTerminated, fmt.Errorf("unknown end mode %q", s)
}

// WriterConfig holds configuration for the binary output writer
type WriterConfig struct {
	FilePath      string        // Path of the output file
	FsyncInterval time.Duration // How often to fsync (0 = every write)
	BufferSize    int           // Write buffer size
	Truncate      bool          // Start from an empty file instead of appending
}

// CallIterator provides streaming access to calls
type CallIterator interface {
	Next() bool
	Call() *codec.FunctionCall
	Err() error
	Close() error
}

// Observer is told about every call a Consumer produces and about how the
// stream ended. Implementations must not retain call.
type Observer interface {
	Translated(dir Direction, call *codec.FunctionCall, size int)
	Failed(dir Direction, err error)
	Finished(dir Direction, calls, bytes int)
}

// Errors
var (
	ErrTruncated      = &StreamError{"stream ends inside a call"}
	ErrBudget         = &StreamError{"call exceeds the remaining byte budget"}
	ErrWrongDirection = &StreamError{"operation not valid for this direction"}
	ErrNoOutput       = &StreamError{"encode consumer has no output"}
)

// StreamError represents a stream driver error
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}
