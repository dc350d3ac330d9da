package stream

import (
	"fmt"
	"io"

	"github.com/ssargent/binscript/pkg/bitbuf"
	"github.com/ssargent/binscript/pkg/codec"
	"github.com/ssargent/binscript/pkg/xlog"
)

// Consumer drives a Codec over one stream, one call per Next. A decode
// consumer reads a binary source; an encode consumer reads script text and
// writes the encoded calls to an output.
type Consumer struct {
	codec *codec.Codec
	dir   Direction

	cur    *bitbuf.Cursor      // decode source
	script *codec.ScriptReader // encode source
	out    io.Writer           // encode destination
	closer io.Closer

	mode      EndMode
	remaining int

	calls    int
	bytes    int
	done     bool
	observer Observer
	log      *xlog.Logger
}

func newConsumer(c *codec.Codec, dir Direction) *Consumer {
	return &Consumer{
		codec: c,
		dir:   dir,
		mode:  NullTerminated,
		log:   xlog.With("component", "stream", "direction", dir.String()),
	}
}

// NewMemoryConsumer decodes calls from data.
func NewMemoryConsumer(c *codec.Codec, data []byte) *Consumer {
	cons := newConsumer(c, Decode)
	cons.cur = bitbuf.From(data)
	return cons
}

// OpenFileConsumer decodes calls from the file at path, which is mapped
// into memory until Close.
func OpenFileConsumer(c *codec.Codec, path string) (*Consumer, error) {
	data, closer, err := mapFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cons := NewMemoryConsumer(c, data)
	cons.closer = closer
	cons.log = cons.log.With("file", path)
	return cons, nil
}

// NewScriptConsumer parses calls from r, writes their encoding to out and
// returns them from Next. file names the script in errors.
func NewScriptConsumer(c *codec.Codec, r io.Reader, file string, out io.Writer) *Consumer {
	cons := newConsumer(c, Encode)
	cons.script = c.NewScriptReader(r, file)
	cons.out = out
	return cons
}

// SetSize sets the end condition. remaining counts bytes for SizeBytes and
// calls for SizeStatements, and is ignored for NullTerminated.
func (c *Consumer) SetSize(mode EndMode, remaining int) {
	c.mode = mode
	c.remaining = remaining
}

func (c *Consumer) SetObserver(o Observer) {
	c.observer = o
}

func (c *Consumer) Direction() Direction {
	return c.dir
}

// Calls returns how many calls have been produced.
func (c *Consumer) Calls() int {
	return c.calls
}

// Bytes returns how many bytes of binary have been read or written,
// including a written sentinel.
func (c *Consumer) Bytes() int {
	return c.bytes
}

// Next returns the next call, or io.EOF once the end condition is met.
// A failed call leaves the stream where it was.
func (c *Consumer) Next() (*codec.FunctionCall, error) {
	if c.done {
		return nil, io.EOF
	}

	var (
		call *codec.FunctionCall
		size int
		err  error
	)
	if c.dir == Decode {
		call, size, err = c.decodeNext()
	} else {
		call, size, err = c.encodeNext()
	}

	switch {
	case err == io.EOF:
		c.finish()
		return nil, io.EOF
	case err != nil:
		c.log.Error("translation failed", xlog.Int("call", c.calls), xlog.Int("offset", c.bytes), xlog.Err(err))
		if c.observer != nil {
			c.observer.Failed(c.dir, err)
		}
		return nil, err
	}

	c.calls++
	c.bytes += size
	if c.mode != NullTerminated {
		if c.mode == SizeBytes {
			c.remaining -= size
		} else {
			c.remaining--
		}
	}
	if c.log.Enabled(xlog.LevelDebug) {
		c.log.Debug("call", xlog.Function(call.Def.Name), xlog.Opcode(call.Def.Opcode), xlog.Int("size", size))
	}
	if c.observer != nil {
		c.observer.Translated(c.dir, call, size)
	}
	return call, nil
}

func (c *Consumer) budgetSpent() bool {
	return c.mode != NullTerminated && c.remaining <= 0
}

func (c *Consumer) decodeNext() (*codec.FunctionCall, int, error) {
	if c.budgetSpent() || c.cur.RemainingBits() == 0 {
		return nil, 0, io.EOF
	}

	op, err := c.codec.PeekOpcode(c.cur)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %d bits left at byte %d", ErrTruncated, c.cur.RemainingBits(), c.cur.BytePos())
	}
	if c.codec.IsSentinel(op) {
		return nil, 0, io.EOF
	}

	if fn, ok := c.codec.Language().Lookup(op); ok {
		size := c.codec.CallSize(fn)
		if c.mode == SizeBytes && size > c.remaining {
			return nil, 0, fmt.Errorf("%w: %s needs %d bytes, %d left", ErrBudget, fn.Name, size, c.remaining)
		}
		if size > c.cur.Remaining() {
			return nil, 0, fmt.Errorf("%w: %s needs %d bytes at byte %d, %d left", ErrTruncated, fn.Name, size, c.cur.BytePos(), c.cur.Remaining())
		}
	}

	start := c.cur.BytePos()
	call, err := c.codec.DecodeCall(c.cur)
	if err != nil {
		return nil, 0, err
	}
	return call, c.cur.BytePos() - start, nil
}

func (c *Consumer) encodeNext() (*codec.FunctionCall, int, error) {
	if c.out == nil {
		return nil, 0, ErrNoOutput
	}
	if c.budgetSpent() {
		return nil, 0, io.EOF
	}

	call, err := c.script.Next()
	if err != nil {
		return nil, 0, err
	}
	data, err := c.codec.Encode(call)
	if err != nil {
		return nil, 0, err
	}
	if c.mode == SizeBytes && len(data) > c.remaining {
		return nil, 0, fmt.Errorf("%w: %s needs %d bytes, %d left", ErrBudget, call.Def.Name, len(data), c.remaining)
	}
	if _, err := c.out.Write(data); err != nil {
		return nil, 0, err
	}
	return call, len(data), nil
}

// finish marks the stream done. Encode streams in NullTerminated mode get
// their sentinel here, so re-encoding a decoded stream reproduces it. A
// schema that defines opcode 0 has no sentinel and its streams end at EOF.
func (c *Consumer) finish() {
	c.done = true

	if c.dir == Encode && c.mode == NullTerminated && c.out != nil && c.codec.IsSentinel(0) {
		sentinel := make([]byte, c.codec.SentinelSize())
		if _, err := c.out.Write(sentinel); err != nil {
			c.log.Error("writing sentinel failed", xlog.Err(err))
		} else {
			c.bytes += len(sentinel)
		}
	}

	c.log.Debug("end of stream", xlog.Int("calls", c.calls), xlog.Int("bytes", c.bytes), xlog.String("mode", c.mode.String()))
	if c.observer != nil {
		c.observer.Finished(c.dir, c.calls, c.bytes)
	}
}

// All drains the consumer and returns every remaining call.
func (c *Consumer) All() ([]*codec.FunctionCall, error) {
	var calls []*codec.FunctionCall
	for {
		call, err := c.Next()
		if err == io.EOF {
			return calls, nil
		}
		if err != nil {
			return calls, err
		}
		calls = append(calls, call)
	}
}

// Iterator returns a streaming iterator over the remaining calls
func (c *Consumer) Iterator() CallIterator {
	return &consumerIterator{consumer: c}
}

// Close releases a mapped source. It does not close an encode output.
// Next returns io.EOF after Close.
func (c *Consumer) Close() error {
	c.done = true
	if c.closer == nil {
		return nil
	}
	c.cur = nil
	err := c.closer.Close()
	c.closer = nil
	return err
}

// consumerIterator implements CallIterator for streaming access
type consumerIterator struct {
	consumer *Consumer
	call     *codec.FunctionCall
	err      error
}

func (it *consumerIterator) Next() bool {
	it.call, it.err = it.consumer.Next()
	return it.err == nil
}

func (it *consumerIterator) Call() *codec.FunctionCall {
	return it.call
}

// Err returns the error that stopped iteration, or nil at a clean end.
func (it *consumerIterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func (it *consumerIterator) Close() error {
	// Don't close the consumer as it's owned by the caller
	return nil
}
