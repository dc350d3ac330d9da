package langdef

import (
	"errors"
	"io"
	"math/bits"
	"os"
	"strings"

	"github.com/ssargent/binscript/pkg/sexpr"
)

const (
	keywordMeta = "meta"
	keywordDef  = "def"
)

// Parse builds a Language from top-level nodes. An optional (meta ...)
// block must be the first node; every other node must be a (def ...) form.
func Parse(nodes []*sexpr.Node) (*Language, error) {
	l := NewLanguage()

	for i, n := range nodes {
		switch {
		case n.IsAtom():
			return nil, newError(UnexpectedRootNode, n.Pos, "atom %q at root level", n.Text)
		case n.HeadIs(keywordMeta):
			if i != 0 {
				return nil, newError(MisplacedMetadataBlock, n.Pos, "metadata block must be the first form")
			}
			if err := ParseMeta(l, n); err != nil {
				return nil, Wrap(err, n.Pos, "error parsing metadata block")
			}
		default:
			fn, err := ParseFunction(l, n)
			if err != nil {
				return nil, Wrap(err, n.Pos, "error parsing function definition")
			}
			if err := l.Add(fn); err != nil {
				return nil, at(err, n.Pos)
			}
		}
	}

	return l, nil
}

// ParseReader reads source text and parses it; file names the source in
// error locations.
func ParseReader(r io.Reader, file string) (*Language, error) {
	nodes, err := sexpr.ReadAll(r, file)
	if err != nil {
		return nil, sourceError(err, file)
	}
	return Parse(nodes)
}

func ParseString(src, file string) (*Language, error) {
	return ParseReader(strings.NewReader(src), file)
}

func ParseFile(path string) (*Language, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseReader(f, path)
}

func sourceError(err error, file string) error {
	pos := sexpr.Pos{File: file}
	var se *sexpr.SyntaxError
	if errors.As(err, &se) {
		pos = se.Pos
		err = se.Err
	}
	return newError(MalformedSource, pos, "cannot read language definition").because(err)
}

const (
	attrEndianness = "endianness"
	attrNameWidth  = "namewidth"
	attrNameShift  = "nameshift"
)

func canonicalAttr(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "endian", "endianness":
		return attrEndianness, true
	case "namewidth", "functionwidth", "funcwidth":
		return attrNameWidth, true
	case "nameshift":
		return attrNameShift, true
	}
	return "", false
}

// ParseMeta applies a (meta (attr value)...) block to l.
func ParseMeta(l *Language, n *sexpr.Node) error {
	if !n.HeadIs(keywordMeta) {
		return newError(UnexpectedRootNode, n.Pos, "expected a meta block")
	}

	seen := make(map[string]sexpr.Pos)
	for _, entry := range n.List[1:] {
		if !entry.IsList() || len(entry.List) != 2 || !entry.List[0].IsAtom() || !entry.List[1].IsAtom() {
			return newError(MalformedMetadataAttribute, entry.Pos, "metadata entries are (attribute value) pairs, got %s", entry)
		}

		key, value := entry.List[0], entry.List[1]
		attr, ok := canonicalAttr(key.Text)
		if !ok {
			return newError(UnknownMetadataAttribute, key.Pos, "unknown metadata attribute %q", key.Text)
		}
		if prev, dup := seen[attr]; dup {
			return newError(DuplicateMetadataAttribute, key.Pos, "%s already set at %s", attr, prev)
		}
		seen[attr] = key.Pos

		if err := applyAttr(l, attr, value); err != nil {
			return err
		}
	}
	return nil
}

func applyAttr(l *Language, attr string, value *sexpr.Node) error {
	switch attr {
	case attrEndianness:
		switch strings.ToLower(value.Text) {
		case "big":
			l.Endianness = BigEndian
		case "little":
			l.Endianness = LittleEndian
		default:
			return newError(MalformedMetadataAttribute, value.Pos, "endianness must be big or little, got %q", value.Text)
		}
	case attrNameWidth:
		width, err := ParseUint(value.Text)
		if err != nil {
			return newError(MalformedMetadataAttribute, value.Pos, "invalid name width %q", value.Text).because(err)
		}
		if width == 0 || width > MaxNameWidth {
			return newError(MalformedMetadataAttribute, value.Pos, "name width must be between 1 and %d bits, got %d", MaxNameWidth, width)
		}
		l.NameWidth = uint(width)
	case attrNameShift:
		shift, err := ParseUint(value.Text)
		if err != nil {
			return newError(MalformedMetadataAttribute, value.Pos, "invalid name shift %q", value.Text).because(err)
		}
		if shift >= 64 {
			return newError(MalformedMetadataAttribute, value.Pos, "name shift must be below 64, got %d", shift)
		}
		l.NameShift = uint(shift)
	}
	return nil
}

// ParseFunction parses (def <opcode> <name> <arg>...) against l's name
// width and shift. It does not add the function to l.
func ParseFunction(l *Language, n *sexpr.Node) (*FunctionDef, error) {
	if !n.HeadIs(keywordDef) {
		return nil, newError(MissingDef, n.Pos, "expected (def <opcode> <name> <args>...), got %s", n)
	}
	items := n.List[1:]

	if len(items) == 0 || !items[0].IsAtom() {
		return nil, newError(MissingBinname, n.Pos, "function definition has no opcode")
	}
	opNode := items[0]
	if opNode.Quoted {
		return nil, newError(MalformedBinname, opNode.Pos, "opcode must be an integer literal, got %s", opNode)
	}
	literal, err := ParseUint(opNode.Text)
	if err != nil {
		return nil, newError(MalformedBinname, opNode.Pos, "opcode %q is not a valid literal", opNode.Text).because(at(err, opNode.Pos))
	}

	opcode := literal >> l.NameShift
	if opcode<<l.NameShift != literal {
		return nil, newError(FunctionBinnamePrecision, opNode.Pos, "opcode %s loses its low bits when shifted right by %d", opNode.Text, l.NameShift)
	}
	if uint(bits.Len64(opcode)) > l.NameWidth {
		return nil, newError(FunctionBinnameSize, opNode.Pos, "opcode %s (0x%x after shift) does not fit in %d bits", opNode.Text, opcode, l.NameWidth)
	}

	if len(items) < 2 || !items[1].IsAtom() || items[1].Quoted {
		return nil, newError(MissingName, n.Pos, "function 0x%x has no name", literal)
	}
	fn := &FunctionDef{
		Opcode: opcode,
		Name:   items[1].Text,
		Args:   make([]ArgumentDef, 0, len(items)-2),
	}

	for i, argNode := range items[2:] {
		arg, err := parseArgument(argNode)
		if err != nil {
			return nil, Wrap(err, argNode.Pos, "error parsing argument %d of %s", i+1, fn.Name)
		}
		fn.Args = append(fn.Args, arg)
	}

	return fn, nil
}

func parseArgument(n *sexpr.Node) (ArgumentDef, error) {
	if n.IsAtom() {
		arg, err := ParseArgType(n.Text)
		return arg, at(err, n.Pos)
	}

	if len(n.List) != 2 || !n.List[0].IsAtom() || !n.List[1].IsAtom() {
		return ArgumentDef{}, newError(MalformedArgument, n.Pos, "named arguments are (<type><width> <name>), got %s", n)
	}
	arg, err := ParseArgType(n.List[0].Text)
	if err != nil {
		return ArgumentDef{}, at(err, n.List[0].Pos)
	}
	arg.Name = n.List[1].Text
	return arg, nil
}
