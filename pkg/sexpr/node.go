package sexpr

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindList Kind = iota
	KindAtom
)

// Pos is a location in source text. Lines and columns count from 1; the
// zero Pos means the location is unknown.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	switch {
	case !p.IsValid() && p.File == "":
		return "-"
	case !p.IsValid():
		return p.File
	case p.File == "":
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type Node struct {
	Kind
	Text   string // atom contents, unescaped when Quoted
	Quoted bool
	List   []*Node
	Pos    Pos
}

// Atom builds an unquoted atom node without a position.
func Atom(text string) *Node {
	return &Node{Kind: KindAtom, Text: text}
}

// List builds a list node without a position.
func List(children ...*Node) *Node {
	if children == nil {
		children = make([]*Node, 0)
	}
	return &Node{Kind: KindList, List: children}
}

func (n *Node) IsAtom() bool {
	return n != nil && n.Kind == KindAtom
}

func (n *Node) IsList() bool {
	return n != nil && n.Kind == KindList
}

// Head returns the first child of a list, or nil.
func (n *Node) Head() *Node {
	if !n.IsList() || len(n.List) == 0 {
		return nil
	}
	return n.List[0]
}

// HeadIs reports whether n is a list whose first child is the unquoted atom word.
func (n *Node) HeadIs(word string) bool {
	h := n.Head()
	return h.IsAtom() && !h.Quoted && h.Text == word
}

func (n *Node) String() string {
	var sb strings.Builder
	n.appendTo(&sb)
	return sb.String()
}

func (n *Node) appendTo(sb *strings.Builder) {
	if n == nil {
		return
	}

	switch n.Kind {
	case KindList:
		sb.WriteByte('(')
		for i, c := range n.List {
			c.appendTo(sb)
			if i < len(n.List)-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte(')')
	case KindAtom:
		if n.Quoted {
			sb.WriteString(Quote(n.Text))
		} else {
			sb.WriteString(n.Text)
		}
	}
}

// Quote renders s as a quoted string the Reader reads back byte for byte.
// Bytes outside printable ASCII are written as \xHH escapes.
func Quote(s string) string {
	const hexDigits = "0123456789abcdef"

	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				sb.WriteString(`\x`)
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0xF])
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
