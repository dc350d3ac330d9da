package langdef

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/ssargent/binscript/pkg/bitbuf"
)

type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

func (e Endianness) String() string {
	switch e {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	}
	return fmt.Sprintf("endianness(%d)", int(e))
}

const (
	DefaultNameWidth = 8
	MaxNameWidth     = 64
)

// Language is a parsed language definition. It is not modified after
// parsing and may be shared between goroutines.
type Language struct {
	Endianness Endianness
	NameWidth  uint // opcode field width in bits
	NameShift  uint // right shift applied to opcode literals

	byOpcode map[uint64]*FunctionDef
	byName   map[string]*FunctionDef
	order    []*FunctionDef
}

// NewLanguage returns an empty big-endian language with 8-bit opcodes.
func NewLanguage() *Language {
	return &Language{
		Endianness: BigEndian,
		NameWidth:  DefaultNameWidth,
		byOpcode:   make(map[uint64]*FunctionDef),
		byName:     make(map[string]*FunctionDef),
	}
}

// Add registers fn under its opcode.
func (l *Language) Add(fn *FunctionDef) error {
	if uint(bits.Len64(fn.Opcode)) > l.NameWidth {
		return newError(FunctionBinnameSize, noPos, "opcode 0x%x of %s does not fit in %d bits", fn.Opcode, fn.Name, l.NameWidth)
	}
	if prev, ok := l.byOpcode[fn.Opcode]; ok {
		return newError(DuplicateFunction, noPos, "%s reuses opcode 0x%x of %s", fn.Name, fn.Opcode, prev.Name)
	}

	l.byOpcode[fn.Opcode] = fn
	if _, ok := l.byName[fn.Name]; !ok {
		l.byName[fn.Name] = fn
	}
	l.order = append(l.order, fn)
	return nil
}

func (l *Language) Lookup(opcode uint64) (*FunctionDef, bool) {
	fn, ok := l.byOpcode[opcode]
	return fn, ok
}

// LookupName finds a function by name. When names repeat, the first
// declaration wins.
func (l *Language) LookupName(name string) (*FunctionDef, bool) {
	fn, ok := l.byName[name]
	return fn, ok
}

// Functions returns the functions in declaration order.
func (l *Language) Functions() []*FunctionDef {
	out := make([]*FunctionDef, len(l.order))
	copy(out, l.order)
	return out
}

func (l *Language) Len() int {
	return len(l.order)
}

// CallWidth returns the width of one encoded call of fn in bits.
func (l *Language) CallWidth(fn *FunctionDef) uint {
	return l.NameWidth + fn.ArgBits()
}

// CallBytes returns the size of one encoded call of fn.
func (l *Language) CallBytes(fn *FunctionDef) int {
	return bitbuf.Bits2Bytes(int(l.CallWidth(fn)))
}

// Literal returns the opcode as written in the definition source.
func (l *Language) Literal(fn *FunctionDef) uint64 {
	return fn.Opcode << l.NameShift
}

// SwapBytes reports whether whole-byte fields are stored in the opposite
// order from the MSB-first bit order of the wire.
func (l *Language) SwapBytes() bool {
	return l.Endianness == LittleEndian
}

func (l *Language) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "endianness=%s namewidth=%d nameshift=%d\n", l.Endianness, l.NameWidth, l.NameShift)
	for _, fn := range l.order {
		fmt.Fprintf(&sb, "    0x%x %s\n", l.Literal(fn), fn)
	}
	return sb.String()
}
