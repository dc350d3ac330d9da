package sexpr

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    string
		wantErr error
	}{
		{name: "xpass: empty list", src: "()", want: "()"},
		{name: "xpass: single atom", src: "abc", want: "abc"},
		{name: "xpass: nested lists", src: "(a (b c) d)", want: "(a (b c) d)"},
		{name: "xpass: call syntax", src: "int4(gfx)", want: "(int4 gfx)"},
		{name: "xpass: empty call", src: "halt()", want: "(halt)"},
		{name: "xpass: call inside list", src: "(def 0x10 demofn skip6 int4(gfx))", want: "(def 0x10 demofn skip6 (int4 gfx))"},
		{name: "xpass: commas separate", src: "test(128, 777.770020)", want: "(test 128 777.770020)"},
		{name: "xpass: space before paren is not a call", src: "a (b)", want: "a (b)"},
		{name: "xpass: comments and newlines", src: "; header\n(meta\n  (endian big)) ; trailing\n", want: "(meta (endian big))"},
		{name: "xpass: quoted string", src: `("a b\n\x01")`, want: `("a b\n\x01")`},
		{name: "xpass: negative literal", src: "(x -0x10)", want: "(x -0x10)"},
		{name: "xfail: mismatched end of list", src: ")", wantErr: ErrUnexpectedChar},
		{name: "xfail: mismatched start of list", src: "(", wantErr: io.ErrUnexpectedEOF},
		{name: "xfail: unterminated string", src: `"abc`, wantErr: ErrUnterminated},
		{name: "xfail: bad escape", src: `"\q"`, wantErr: ErrBadEscape},
		{name: "xfail: short hex escape", src: `"\x1"`, wantErr: ErrBadEscape},
		{name: "xfail: newline in string", src: "\"ab\ncd\"", wantErr: ErrNewlineInQuoted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := ParseString(tt.src, "test.def")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)

			parts := make([]string, len(nodes))
			for i, n := range nodes {
				parts[i] = n.String()
			}
			assert.Equal(t, tt.want, strings.Join(parts, " "))
		})
	}
}

func TestReader_Positions(t *testing.T) {
	src := "(meta (endian big))\n\n  (def 0x08 test\n     uint32(intarg))"
	nodes, err := ParseString(src, "lang.def")
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, Pos{File: "lang.def", Line: 1, Col: 1}, nodes[0].Pos)
	assert.Equal(t, Pos{File: "lang.def", Line: 1, Col: 7}, nodes[0].List[1].Pos)

	def := nodes[1]
	assert.Equal(t, Pos{File: "lang.def", Line: 3, Col: 3}, def.Pos)
	assert.Equal(t, Pos{File: "lang.def", Line: 3, Col: 8}, def.List[1].Pos)

	arg := def.List[3]
	require.True(t, arg.IsList())
	assert.Equal(t, Pos{File: "lang.def", Line: 4, Col: 6}, arg.Pos)
	assert.Equal(t, "lang.def:4:6", arg.Pos.String())
}

func TestReader_SyntaxErrorPosition(t *testing.T) {
	_, err := ParseString("(a b)\n  )", "x.def")
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, Pos{File: "x.def", Line: 2, Col: 3}, se.Pos)
}

func TestReader_Next(t *testing.T) {
	r := NewReader(strings.NewReader("a(1) b(2)\n"), "")

	n, err := r.Next()
	require.NoError(t, err)
	assert.True(t, n.HeadIs("a"))

	n, err = r.Next()
	require.NoError(t, err)
	assert.True(t, n.HeadIs("b"))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestQuote(t *testing.T) {
	raw := string([]byte{'a', 0, '"', '\\', 0xff, '\t', 'z'})
	quoted := Quote(raw)
	assert.Equal(t, `"a\x00\"\\\xff\tz"`, quoted)

	nodes, err := ParseString(quoted, "")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, nodes[0].Quoted)
	assert.Equal(t, raw, nodes[0].Text)
}

func TestNode_Helpers(t *testing.T) {
	n := List(Atom("def"), Atom("0x10"))
	assert.True(t, n.IsList())
	assert.True(t, n.HeadIs("def"))
	assert.False(t, n.HeadIs("meta"))
	assert.Nil(t, List().Head())
	assert.False(t, Atom("x").HeadIs("x"))
	assert.Equal(t, "-", Pos{}.String())
}
