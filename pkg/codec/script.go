package codec

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/binscript/pkg/langdef"
	"github.com/ssargent/binscript/pkg/sexpr"
)

// ParseCall parses one call written as name(arg, arg) or (name arg arg).
func (c *Codec) ParseCall(text string) (*FunctionCall, error) {
	nodes, err := sexpr.ParseString(text, "")
	if err != nil {
		return nil, scriptError(err)
	}
	switch len(nodes) {
	case 0:
		return nil, langdef.Errorf(langdef.MalformedCall, sexpr.Pos{}, "empty call")
	case 1:
		return c.ParseCallNode(nodes[0])
	}
	return nil, langdef.Errorf(langdef.MalformedCall, nodes[1].Pos, "expected a single call, got %d forms", len(nodes))
}

// ParseCallNode builds a call from a parsed (name arg...) list, checking each
// literal against the argument it fills.
func (c *Codec) ParseCallNode(n *sexpr.Node) (*FunctionCall, error) {
	if !n.IsList() {
		return nil, langdef.Errorf(langdef.MalformedCall, n.Pos, "expected a call, got %s", n)
	}
	head := n.Head()
	if head == nil || !head.IsAtom() || head.Quoted {
		return nil, langdef.Errorf(langdef.MalformedCall, n.Pos, "call does not start with a function name: %s", n)
	}

	fn, ok := c.lang.LookupName(head.Text)
	if !ok {
		return nil, langdef.Errorf(langdef.UnknownFunctionName, head.Pos, "unknown function %q", head.Text)
	}

	literals := n.List[1:]
	call := &FunctionCall{Def: fn, Args: make([]Value, 0, fn.Values())}
	i := 0
	for argN, arg := range fn.Args {
		if arg.Type == langdef.TypeSkip {
			continue
		}
		if i >= len(literals) {
			return nil, langdef.Errorf(langdef.MissingArgument, n.Pos, "%s expects %d arguments, got %d", fn.Name, fn.Values(), len(literals))
		}
		v, err := parseValue(arg, literals[i])
		if err != nil {
			return nil, langdef.Wrap(err, literals[i].Pos, "error parsing argument %d of %s", argN+1, fn.Name)
		}
		call.Args = append(call.Args, v)
		i++
	}
	if i < len(literals) {
		return nil, langdef.Errorf(langdef.LeftoverArgument, literals[i].Pos, "%s expects %d arguments, got %d", fn.Name, fn.Values(), len(literals))
	}

	return call, nil
}

func parseValue(arg langdef.ArgumentDef, n *sexpr.Node) (Value, error) {
	if !n.IsAtom() {
		return Value{}, langdef.Errorf(langdef.ArgumentValue, n.Pos, "expected a literal for %s, got %s", arg, n)
	}
	numeric := arg.Type == langdef.TypeInt || arg.Type == langdef.TypeUint || arg.Type == langdef.TypeFloat
	if numeric && n.Quoted {
		return Value{}, langdef.Errorf(langdef.ArgumentValue, n.Pos, "expected a number for %s, got %s", arg, n)
	}

	var v Value
	switch arg.Type {
	case langdef.TypeInt:
		i, err := langdef.ParseInt(n.Text)
		if err != nil {
			return Value{}, valueError(n, arg, err)
		}
		v = IntValue(i)
	case langdef.TypeUint:
		u, err := langdef.ParseUint(n.Text)
		if err != nil {
			return Value{}, valueError(n, arg, err)
		}
		v = UintValue(u)
	case langdef.TypeFloat:
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil {
			return Value{}, valueError(n, arg, err)
		}
		v = FloatValue(f)
	case langdef.TypeString:
		v = StringValue(n.Text)
	case langdef.TypeRawString:
		v = RawValue([]byte(n.Text))
	}

	if err := checkValue(arg, v); err != nil {
		var pe *langdef.ParseError
		if errors.As(err, &pe) && !pe.Pos.IsValid() {
			pe.Pos = n.Pos
		}
		return Value{}, err
	}
	return v, nil
}

func valueError(n *sexpr.Node, arg langdef.ArgumentDef, cause error) error {
	e := langdef.Errorf(langdef.ArgumentValue, n.Pos, "%q is not a valid %s value", n.Text, arg.Type)
	e.Cause = cause
	return e
}

func scriptError(err error) error {
	pos := sexpr.Pos{}
	var se *sexpr.SyntaxError
	if errors.As(err, &se) {
		pos = se.Pos
		err = se.Err
	}
	e := langdef.Errorf(langdef.MalformedSource, pos, "cannot read script")
	e.Cause = err
	return e
}

// ScriptReader reads calls one at a time from script text.
type ScriptReader struct {
	codec *Codec
	src   *sexpr.Reader
}

// NewScriptReader reads calls from r; file names the source in errors.
func (c *Codec) NewScriptReader(r io.Reader, file string) *ScriptReader {
	return &ScriptReader{codec: c, src: sexpr.NewReader(r, file)}
}

// Next returns the next call, or io.EOF after the last one.
func (s *ScriptReader) Next() (*FunctionCall, error) {
	n, err := s.src.Next()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, scriptError(err)
	}
	return s.codec.ParseCallNode(n)
}

// ParseScript reads every call in r.
func (c *Codec) ParseScript(r io.Reader, file string) ([]*FunctionCall, error) {
	sr := c.NewScriptReader(r, file)
	var calls []*FunctionCall
	for {
		call, err := sr.Next()
		if err == io.EOF {
			return calls, nil
		}
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
}

// FormatScript renders calls one per line, the form ParseScript reads back.
func FormatScript(calls []*FunctionCall) string {
	var sb strings.Builder
	for _, call := range calls {
		sb.WriteString(call.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
