package langdef

import (
	"fmt"
	"strings"
)

// ArgType is the closed set of argument kinds.
type ArgType int

const (
	TypeRawString ArgType = iota // fixed length, copied verbatim
	TypeString                   // fixed length, null terminated
	TypeInt                      // sign-magnitude
	TypeUint
	TypeFloat // IEEE 754, 16/32/64 bits
	TypeSkip  // padding, no value
)

// ArgTypes lists every ArgType in declaration order.
var ArgTypes = []ArgType{TypeRawString, TypeString, TypeInt, TypeUint, TypeFloat, TypeSkip}

// String returns the type word used in language definitions.
func (t ArgType) String() string {
	switch t {
	case TypeRawString:
		return "raw_str"
	case TypeString:
		return "str"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeSkip:
		return "skip"
	}
	return fmt.Sprintf("argtype(%d)", int(t))
}

// ValidateSize reports whether bits is an allowed width for t.
func (t ArgType) ValidateSize(bits uint) bool {
	if bits == 0 {
		return false
	}
	switch t {
	case TypeRawString, TypeString:
		return bits%8 == 0
	case TypeFloat:
		return bits == 16 || bits == 32 || bits == 64
	case TypeInt, TypeUint, TypeSkip:
		return true
	}
	return false
}

type ArgumentDef struct {
	Type ArgType
	Bits uint
	Name string // optional, display only
}

func (a ArgumentDef) String() string {
	if a.Name == "" {
		return fmt.Sprintf("<%s:%d>", a.Type, a.Bits)
	}
	return fmt.Sprintf("<%s:%d %s>", a.Type, a.Bits, a.Name)
}

// FunctionDef is one record of the wire format. Opcode is the stored value,
// already shifted right by the language's name shift.
type FunctionDef struct {
	Opcode uint64
	Name   string
	Args   []ArgumentDef
}

// ArgBits returns the summed width of all arguments.
func (f *FunctionDef) ArgBits() uint {
	var total uint
	for _, a := range f.Args {
		total += a.Bits
	}
	return total
}

// Values returns how many arguments carry a value, which excludes skips.
func (f *FunctionDef) Values() int {
	n := 0
	for _, a := range f.Args {
		if a.Type != TypeSkip {
			n++
		}
	}
	return n
}

func (f *FunctionDef) String() string {
	parts := make([]string, 0, len(f.Args)+1)
	parts = append(parts, f.Name+":")
	for _, a := range f.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}
