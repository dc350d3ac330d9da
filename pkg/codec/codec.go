package codec

import (
	"bytes"
	"fmt"
	"math"

	"github.com/ssargent/binscript/pkg/bitbuf"
	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/sexpr"
)

// maxIntBits is the widest integer field that fits a Value.
const maxIntBits = 64

// Codec translates between function calls and their binary form for one
// language. A Codec holds no per-stream state and may be shared.
type Codec struct {
	lang *langdef.Language
}

func New(lang *langdef.Language) *Codec {
	return &Codec{lang: lang}
}

func (c *Codec) Language() *langdef.Language {
	return c.lang
}

// PeekOpcode reads the opcode field under cur without moving it.
func (c *Codec) PeekOpcode(cur *bitbuf.Cursor) (uint64, error) {
	return cur.PeekUint(int(c.lang.NameWidth))
}

// IsSentinel reports whether opcode marks the end of a stream: it is zero
// and no function is registered for it.
func (c *Codec) IsSentinel(opcode uint64) bool {
	if opcode != 0 {
		return false
	}
	_, ok := c.lang.Lookup(0)
	return !ok
}

// CallSize returns the encoded size of a call to fn in bytes.
func (c *Codec) CallSize(fn *langdef.FunctionDef) int {
	return c.lang.CallBytes(fn)
}

// DecodeCall decodes the call under cur and moves cur past all of its
// bytes. cur is left untouched when decoding fails.
func (c *Codec) DecodeCall(cur *bitbuf.Cursor) (*FunctionCall, error) {
	opcode, err := c.PeekOpcode(cur)
	if err != nil {
		return nil, err
	}
	fn, ok := c.lang.Lookup(opcode)
	if !ok {
		return nil, langdef.Errorf(langdef.UnknownFunctionName, sexpr.Pos{}, "no function for opcode 0x%x at byte %d", opcode, cur.BytePos())
	}

	size := c.lang.CallBytes(fn)
	if cur.RemainingBits() < size*8 {
		return nil, fmt.Errorf("%w: %s call needs %d bytes, %d left", bitbuf.ErrOutOfBounds, fn.Name, size, cur.Remaining())
	}

	body := cur.Clone()
	if err := body.Advance(int(c.lang.NameWidth)); err != nil {
		return nil, err
	}

	call := &FunctionCall{Def: fn, Args: make([]Value, 0, fn.Values())}
	for i, arg := range fn.Args {
		v, ok, err := c.decodeArg(body, arg)
		if err != nil {
			return nil, langdef.Wrap(err, sexpr.Pos{}, "error decoding argument %d of %s", i+1, fn.Name)
		}
		if ok {
			call.Args = append(call.Args, v)
		}
	}

	return call, cur.Advance(size * 8)
}

// Decode decodes the call at the start of data and returns it with the
// number of bytes it occupied.
func (c *Codec) Decode(data []byte) (*FunctionCall, int, error) {
	cur := bitbuf.From(data)
	call, err := c.DecodeCall(cur)
	if err != nil {
		return nil, 0, err
	}
	return call, cur.BytePos(), nil
}

// readField reads an integer field right justified, restoring byte order
// for whole-byte fields of little endian languages.
func (c *Codec) readField(cur *bitbuf.Cursor, bits uint) (uint64, error) {
	if !c.swaps(bits) {
		return cur.ReadUint(int(bits))
	}
	buf := make([]byte, bits/8)
	if err := cur.Pop(buf, int(bits)); err != nil {
		return 0, err
	}
	bitbuf.SwapBytes(buf)
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func (c *Codec) writeField(cur *bitbuf.Cursor, v uint64, bits uint) error {
	if !c.swaps(bits) {
		return cur.WriteUint(v, int(bits))
	}
	buf := make([]byte, bits/8)
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	bitbuf.SwapBytes(buf)
	return cur.WriteBlock(buf, int(bits))
}

func (c *Codec) swaps(bits uint) bool {
	return c.lang.SwapBytes() && bits%8 == 0
}

func (c *Codec) decodeArg(cur *bitbuf.Cursor, arg langdef.ArgumentDef) (Value, bool, error) {
	switch arg.Type {
	case langdef.TypeSkip:
		return Value{}, false, cur.Advance(int(arg.Bits))

	case langdef.TypeInt, langdef.TypeUint:
		if arg.Bits > maxIntBits {
			return Value{}, false, langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%s is wider than %d bits", arg, maxIntBits)
		}
		raw, err := c.readField(cur, arg.Bits)
		if err != nil {
			return Value{}, false, err
		}
		if arg.Type == langdef.TypeUint {
			return UintValue(raw), true, nil
		}
		// sign-magnitude: the top bit is the sign, the rest the magnitude
		signBit := uint64(1) << (arg.Bits - 1)
		mag := int64(raw &^ signBit)
		if raw&signBit != 0 {
			mag = -mag
		}
		return IntValue(mag), true, nil

	case langdef.TypeFloat:
		raw, err := c.readField(cur, arg.Bits)
		if err != nil {
			return Value{}, false, err
		}
		switch arg.Bits {
		case 16:
			return FloatValue(halfToFloat(uint16(raw))), true, nil
		case 32:
			return FloatValue(float64(math.Float32frombits(uint32(raw)))), true, nil
		case 64:
			return FloatValue(math.Float64frombits(raw)), true, nil
		}
		return Value{}, false, langdef.Errorf(langdef.DisallowedSize, sexpr.Pos{}, "no float of %d bits", arg.Bits)

	case langdef.TypeString, langdef.TypeRawString:
		buf := make([]byte, arg.Bits/8)
		if err := cur.Pop(buf, int(arg.Bits)); err != nil {
			return Value{}, false, err
		}
		if arg.Type == langdef.TypeRawString {
			return Value{Type: arg.Type, Bytes: buf}, true, nil
		}
		// the last byte is reserved for the terminator
		content := buf[:len(buf)-1]
		if i := bytes.IndexByte(content, 0); i >= 0 {
			content = content[:i]
		}
		return Value{Type: arg.Type, Bytes: content}, true, nil
	}

	return Value{}, false, langdef.Errorf(langdef.UnknownArgtype, sexpr.Pos{}, "cannot decode %s", arg)
}

// Check verifies that call can be encoded: its function belongs to the
// language and every value matches its argument's type and width.
func (c *Codec) Check(call *FunctionCall) error {
	_, err := c.resolve(call)
	return err
}

func (c *Codec) resolve(call *FunctionCall) (*langdef.FunctionDef, error) {
	if call == nil || call.Def == nil {
		return nil, langdef.Errorf(langdef.MalformedCall, sexpr.Pos{}, "call has no function")
	}
	fn, ok := c.lang.Lookup(call.Def.Opcode)
	if !ok || fn.Name != call.Def.Name {
		return nil, langdef.Errorf(langdef.UnknownFunctionName, sexpr.Pos{}, "function %s (opcode 0x%x) is not part of the language", call.Def.Name, call.Def.Opcode)
	}

	want := fn.Values()
	switch {
	case len(call.Args) < want:
		return nil, langdef.Errorf(langdef.MissingArgument, sexpr.Pos{}, "%s takes %d arguments, got %d", fn.Name, want, len(call.Args))
	case len(call.Args) > want:
		return nil, langdef.Errorf(langdef.LeftoverArgument, sexpr.Pos{}, "%s takes %d arguments, got %d", fn.Name, want, len(call.Args))
	}

	i := 0
	for n, arg := range fn.Args {
		if arg.Type == langdef.TypeSkip {
			continue
		}
		if err := checkValue(arg, call.Args[i]); err != nil {
			return nil, langdef.Wrap(err, sexpr.Pos{}, "error checking argument %d of %s", n+1, fn.Name)
		}
		i++
	}
	return fn, nil
}

func checkValue(arg langdef.ArgumentDef, v Value) error {
	if v.Type != arg.Type {
		return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%s value given for %s", v.Type, arg)
	}

	switch arg.Type {
	case langdef.TypeInt:
		if arg.Bits > maxIntBits {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%s is wider than %d bits", arg, maxIntBits)
		}
		if v.Int == math.MinInt64 || magnitude(v.Int) >= uint64(1)<<(arg.Bits-1) {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%d does not fit %s", v.Int, arg)
		}
	case langdef.TypeUint:
		if arg.Bits > maxIntBits {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%s is wider than %d bits", arg, maxIntBits)
		}
		if arg.Bits < maxIntBits && v.Uint>>arg.Bits != 0 {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%d does not fit %s", v.Uint, arg)
		}
	case langdef.TypeFloat:
		narrowed := false
		switch arg.Bits {
		case 16:
			narrowed = math.IsInf(halfToFloat(floatToHalf(v.Float)), 0)
		case 32:
			narrowed = math.IsInf(float64(float32(v.Float)), 0)
		}
		if narrowed && !math.IsInf(v.Float, 0) {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%g overflows %s", v.Float, arg)
		}
	case langdef.TypeString:
		if len(v.Bytes) > int(arg.Bits/8)-1 {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%d byte string does not fit %s", len(v.Bytes), arg)
		}
		if bytes.IndexByte(v.Bytes, 0) >= 0 {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "null byte inside terminated string for %s", arg)
		}
	case langdef.TypeRawString:
		if len(v.Bytes) > int(arg.Bits/8) {
			return langdef.Errorf(langdef.ArgumentValue, sexpr.Pos{}, "%d bytes do not fit %s", len(v.Bytes), arg)
		}
	}
	return nil
}

func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// EncodeCall writes call at cur and moves cur past the whole call,
// zero filling the bits after the last argument up to the byte boundary.
func (c *Codec) EncodeCall(call *FunctionCall, cur *bitbuf.Cursor) error {
	fn, err := c.resolve(call)
	if err != nil {
		return err
	}
	size := c.lang.CallBytes(fn)
	if cur.RemainingBits() < size*8 {
		return fmt.Errorf("%w: %s call needs %d bytes, %d left", bitbuf.ErrOutOfBounds, fn.Name, size, cur.Remaining())
	}

	if err := cur.WriteUint(fn.Opcode, int(c.lang.NameWidth)); err != nil {
		return err
	}

	i := 0
	for _, arg := range fn.Args {
		if arg.Type == langdef.TypeSkip {
			if err := cur.WriteZeros(int(arg.Bits)); err != nil {
				return err
			}
			continue
		}
		if err := c.encodeArg(cur, arg, call.Args[i]); err != nil {
			return err
		}
		i++
	}

	return cur.WriteZeros(size*8 - int(c.lang.CallWidth(fn)))
}

// Encode returns the bytes of call.
func (c *Codec) Encode(call *FunctionCall) ([]byte, error) {
	fn, err := c.resolve(call)
	if err != nil {
		return nil, err
	}
	cur := bitbuf.New(c.lang.CallBytes(fn))
	if err := c.EncodeCall(call, cur); err != nil {
		return nil, err
	}
	return cur.Bytes(), nil
}

// EncodeSentinel writes the end of stream marker, a zero opcode padded to
// whole bytes.
func (c *Codec) EncodeSentinel(cur *bitbuf.Cursor) error {
	return cur.WriteZeros(bitbuf.Bits2Bytes(int(c.lang.NameWidth)) * 8)
}

// SentinelSize returns the size of the end of stream marker in bytes.
func (c *Codec) SentinelSize() int {
	return bitbuf.Bits2Bytes(int(c.lang.NameWidth))
}

func (c *Codec) encodeArg(cur *bitbuf.Cursor, arg langdef.ArgumentDef, v Value) error {
	switch arg.Type {
	case langdef.TypeInt:
		field := magnitude(v.Int)
		if v.Int < 0 {
			field |= uint64(1) << (arg.Bits - 1)
		}
		return c.writeField(cur, field, arg.Bits)

	case langdef.TypeUint:
		return c.writeField(cur, v.Uint, arg.Bits)

	case langdef.TypeFloat:
		var raw uint64
		switch arg.Bits {
		case 16:
			raw = uint64(floatToHalf(v.Float))
		case 32:
			raw = uint64(math.Float32bits(float32(v.Float)))
		case 64:
			raw = math.Float64bits(v.Float)
		}
		return c.writeField(cur, raw, arg.Bits)

	case langdef.TypeString, langdef.TypeRawString:
		buf := make([]byte, arg.Bits/8)
		copy(buf, v.Bytes)
		return cur.WriteBlock(buf, int(arg.Bits))
	}
	return langdef.Errorf(langdef.UnknownArgtype, sexpr.Pos{}, "cannot encode %s", arg)
}
