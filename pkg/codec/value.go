package codec

import (
	"bytes"
	"strconv"

	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/sexpr"
)

// Value is one decoded argument. Type selects which field is meaningful:
// Int for TypeInt, Uint for TypeUint, Float for TypeFloat and Bytes for
// both string types. Skip arguments never produce a Value.
type Value struct {
	Type  langdef.ArgType
	Int   int64
	Uint  uint64
	Float float64
	Bytes []byte
}

func IntValue(v int64) Value {
	return Value{Type: langdef.TypeInt, Int: v}
}

func UintValue(v uint64) Value {
	return Value{Type: langdef.TypeUint, Uint: v}
}

func FloatValue(f float64) Value {
	return Value{Type: langdef.TypeFloat, Float: f}
}

// StringValue holds the content of a null terminated string field, without
// the terminator.
func StringValue(s string) Value {
	return Value{Type: langdef.TypeString, Bytes: []byte(s)}
}

// RawValue holds the bytes of a raw string field.
func RawValue(b []byte) Value {
	return Value{Type: langdef.TypeRawString, Bytes: append([]byte{}, b...)}
}

// String formats v the way it appears in a call: integers in decimal,
// floats with six decimals and strings quoted.
func (v Value) String() string {
	switch v.Type {
	case langdef.TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case langdef.TypeUint:
		return strconv.FormatUint(v.Uint, 10)
	case langdef.TypeFloat:
		return strconv.FormatFloat(v.Float, 'f', 6, 64)
	case langdef.TypeString, langdef.TypeRawString:
		return sexpr.Quote(string(v.Bytes))
	}
	return "<" + v.Type.String() + ">"
}

// Equal compares the meaningful field of two values.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case langdef.TypeInt:
		return v.Int == o.Int
	case langdef.TypeUint:
		return v.Uint == o.Uint
	case langdef.TypeFloat:
		return v.Float == o.Float
	case langdef.TypeString, langdef.TypeRawString:
		return bytes.Equal(v.Bytes, o.Bytes)
	}
	return true
}
