package codec

import (
	"strings"

	"github.com/ssargent/binscript/pkg/langdef"
)

// FunctionCall is one decoded record: its definition plus a value for every
// argument that is not a skip, in declaration order.
type FunctionCall struct {
	Def  *langdef.FunctionDef
	Args []Value
}

func NewCall(def *langdef.FunctionDef, args ...Value) *FunctionCall {
	return &FunctionCall{Def: def, Args: args}
}

// String renders the call as name(arg, arg, ...), the form ParseCall reads.
func (c *FunctionCall) String() string {
	var sb strings.Builder
	sb.WriteString(c.Def.Name)
	sb.WriteByte('(')
	for i, v := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// Equal reports whether both calls use the same function with equal values.
func (c *FunctionCall) Equal(o *FunctionCall) bool {
	if c.Def != o.Def && (c.Def == nil || o.Def == nil || c.Def.Opcode != o.Def.Opcode || c.Def.Name != o.Def.Name) {
		return false
	}
	if len(c.Args) != len(o.Args) {
		return false
	}
	for i := range c.Args {
		if !c.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// Named returns the value of the argument called name.
func (c *FunctionCall) Named(name string) (Value, bool) {
	i := 0
	for _, a := range c.Def.Args {
		if a.Type == langdef.TypeSkip {
			continue
		}
		if a.Name == name && i < len(c.Args) {
			return c.Args[i], true
		}
		i++
	}
	return Value{}, false
}
