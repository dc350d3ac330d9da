package sexpr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrUnexpectedChar  = errors.New("unexpected character")
	ErrUnterminated    = errors.New("unterminated quoted string")
	ErrBadEscape       = errors.New("invalid escape sequence")
	ErrNewlineInQuoted = errors.New("newline inside quoted string")
)

// SyntaxError locates a failure to read source text.
type SyntaxError struct {
	Pos Pos
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

type scanner struct {
	src  *bufio.Reader
	pos  Pos // position of the next rune
	prev Pos // position before the last read, for unread
}

func (s *scanner) read() (rune, Pos, error) {
	r, _, err := s.src.ReadRune()
	if err != nil {
		return 0, s.pos, err
	}
	at := s.pos
	s.prev = s.pos
	if r == '\n' {
		s.pos.Line++
		s.pos.Col = 1
	} else {
		s.pos.Col++
	}
	return r, at, nil
}

func (s *scanner) unread() {
	if err := s.src.UnreadRune(); err == nil {
		s.pos = s.prev
	}
}

// Reader reads top-level nodes one at a time.
type Reader struct {
	s scanner
}

// NewReader reads from r; file names the source in positions and may be empty.
func NewReader(r io.Reader, file string) *Reader {
	return &Reader{s: scanner{
		src: bufio.NewReader(r),
		pos: Pos{File: file, Line: 1, Col: 1},
	}}
}

// Next returns the next top-level node, or io.EOF once the input holds only
// space and comments.
func (r *Reader) Next() (*Node, error) {
	n, end, err := r.node()
	if err != nil {
		return nil, err
	}
	if end != nil {
		return nil, &SyntaxError{Pos: *end, Err: ErrUnexpectedChar}
	}
	return n, nil
}

// ReadAll reads every top-level node in r.
func ReadAll(r io.Reader, file string) ([]*Node, error) {
	rd := NewReader(r, file)
	var nodes []*Node
	for {
		n, err := rd.Next()
		if err == io.EOF {
			return nodes, nil
		}
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
}

// ParseString reads every top-level node in src.
func ParseString(src, file string) ([]*Node, error) {
	return ReadAll(strings.NewReader(src), file)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', ',':
		return true
	}
	return false
}

func isAtomRune(r rune) bool {
	return !isSpace(r) && r != '(' && r != ')' && r != '"' && r != ';'
}

// skipSpace returns the first rune that is neither space nor comment.
func (r *Reader) skipSpace() (rune, Pos, error) {
	comment := false
	for {
		ch, at, err := r.s.read()
		if err != nil {
			return 0, at, err
		}
		switch {
		case comment:
			comment = ch != '\n'
		case ch == ';':
			comment = true
		case isSpace(ch):
		default:
			return ch, at, nil
		}
	}
}

// node reads one node. A closing parenthesis is reported through end
// instead of a node.
func (r *Reader) node() (n *Node, end *Pos, err error) {
	ch, at, err := r.skipSpace()
	if err != nil {
		return nil, nil, err
	}

	switch ch {
	case ')':
		return nil, &at, nil
	case '(':
		n, err = r.list(at, nil)
		return n, nil, err
	case '"':
		n, err = r.quoted(at)
		return n, nil, err
	}

	r.s.unread()
	n, err = r.atom(at)
	if err != nil {
		return nil, nil, err
	}

	// name(args...) with no space before the parenthesis
	next, _, err := r.s.read()
	switch {
	case err == io.EOF:
		return n, nil, nil
	case err != nil:
		return nil, nil, err
	case next == '(':
		n, err = r.list(n.Pos, n)
		return n, nil, err
	}
	r.s.unread()
	return n, nil, nil
}

func (r *Reader) list(at Pos, head *Node) (*Node, error) {
	n := &Node{Kind: KindList, Pos: at, List: make([]*Node, 0, 8)}
	if head != nil {
		n.List = append(n.List, head)
	}

	for {
		child, end, err := r.node()
		if err == io.EOF {
			return nil, &SyntaxError{Pos: at, Err: io.ErrUnexpectedEOF}
		}
		if err != nil {
			return nil, err
		}
		if end != nil {
			return n, nil
		}
		n.List = append(n.List, child)
	}
}

func (r *Reader) atom(at Pos) (*Node, error) {
	var sb strings.Builder
	for {
		ch, _, err := r.s.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !isAtomRune(ch) {
			r.s.unread()
			break
		}
		sb.WriteRune(ch)
	}
	return &Node{Kind: KindAtom, Text: sb.String(), Pos: at}, nil
}

func unhex(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	}
	return 0, false
}

func (r *Reader) quoted(at Pos) (*Node, error) {
	var buf []byte
	for {
		ch, chAt, err := r.s.read()
		if err == io.EOF {
			return nil, &SyntaxError{Pos: at, Err: ErrUnterminated}
		}
		if err != nil {
			return nil, err
		}

		switch ch {
		case '"':
			return &Node{Kind: KindAtom, Text: string(buf), Quoted: true, Pos: at}, nil
		case '\n', '\r':
			return nil, &SyntaxError{Pos: chAt, Err: ErrNewlineInQuoted}
		case '\\':
			b, err := r.escape(chAt)
			if err != nil {
				return nil, err
			}
			buf = append(buf, b)
		default:
			buf = append(buf, string(ch)...)
		}
	}
}

func (r *Reader) escape(at Pos) (byte, error) {
	ch, _, err := r.s.read()
	if err == io.EOF {
		return 0, &SyntaxError{Pos: at, Err: ErrUnterminated}
	}
	if err != nil {
		return 0, err
	}

	switch ch {
	case '\\':
		return '\\', nil
	case '"':
		return '"', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'v':
		return '\v', nil
	case 'f':
		return '\f', nil
	case '0':
		return 0, nil
	case 'x':
		var v byte
		for i := 0; i < 2; i++ {
			d, _, err := r.s.read()
			if err != nil {
				return 0, &SyntaxError{Pos: at, Err: ErrBadEscape}
			}
			h, ok := unhex(d)
			if !ok {
				return 0, &SyntaxError{Pos: at, Err: ErrBadEscape}
			}
			v = v<<4 | h
		}
		return v, nil
	}
	return 0, &SyntaxError{Pos: at, Err: ErrBadEscape}
}
