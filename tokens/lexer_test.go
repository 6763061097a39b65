package tokens

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignorePos = cmpopts.IgnoreFields(Token{}, "Pos", "End")

func TestLexTree(t *testing.T) {
	t.Parallel()

	f, err := Lex("a.go", "foo(bar, 1) [x]")
	require.NoError(t, err)

	want := []Token{
		{Kind: Ident, Text: "foo"},
		{Kind: Group, Delim: Parenthesis, Children: []Token{
			{Kind: Ident, Text: "bar"},
			{Kind: Punct, Text: ","},
			{Kind: Literal, Text: "1", Lead: " "},
		}},
		{Kind: Group, Delim: Bracket, Lead: " ", Children: []Token{
			{Kind: Ident, Text: "x"},
		}},
	}
	if diff := cmp.Diff(want, f.Tokens, ignorePos); diff != "" {
		t.Errorf("Lex() mismatch (-want +got):\n%s", diff)
	}
}

func TestLexLeaves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kinds []Kind
		texts []string
	}{
		{
			name:  "numbers",
			input: "1.5e-3 0x1p-2 3_000u8 0xfe-1",
			kinds: []Kind{Literal, Literal, Literal, Literal, Punct, Literal},
			texts: []string{"1.5e-3", "0x1p-2", "3_000u8", "0xfe", "-", "1"},
		},
		{
			name:  "range",
			input: "1..2",
			kinds: []Kind{Literal, Punct, Punct, Literal},
			texts: []string{"1", ".", ".", "2"},
		},
		{
			name:  "strings",
			input: "\"a\\\"b\" `raw\nline` b\"bytes\" r#\"x\"y\"#",
			kinds: []Kind{Literal, Literal, Literal, Literal},
			texts: []string{"\"a\\\"b\"", "`raw\nline`", "b\"bytes\"", "r#\"x\"y\"#"},
		},
		{
			name:  "characters and lifetimes",
			input: "'a' '\\n' &'a T",
			kinds: []Kind{Literal, Literal, Punct, Punct, Ident, Ident},
			texts: []string{"'a'", "'\\n'", "&", "'", "a", "T"},
		},
		{
			name:  "unicode identifiers",
			input: "größe _x9",
			kinds: []Kind{Ident, Ident},
			texts: []string{"größe", "_x9"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			toks, err := LexString(tt.input)
			require.NoError(t, err)
			require.Len(t, toks, len(tt.kinds))
			for i, tok := range toks {
				assert.Equal(t, tt.kinds[i], tok.Kind, "token %d", i)
				assert.Equal(t, tt.texts[i], tok.Text, "token %d", i)
			}
		})
	}
}

func TestLexSpacing(t *testing.T) {
	t.Parallel()

	toks, err := LexString("a::b duplicate!{} x = !y")
	require.NoError(t, err)

	assert.Equal(t, Joint, toks[1].Spacing)
	assert.Equal(t, Alone, toks[2].Spacing)
	assert.True(t, toks[5].IsPunct('!'), "'!' before a group is alone")
	assert.True(t, toks[8].IsPunct('='))
	assert.True(t, toks[9].IsPunct('!'))
}

func TestLexPositions(t *testing.T) {
	t.Parallel()

	f, err := Lex("pos.dup", "a\n  {b}")
	require.NoError(t, err)
	require.Len(t, f.Tokens, 2)

	assert.Equal(t, Pos{Filename: "pos.dup", Offset: 0, Line: 1, Column: 1}, f.Tokens[0].Pos)
	group := f.Tokens[1]
	assert.Equal(t, Pos{Filename: "pos.dup", Offset: 4, Line: 2, Column: 3}, group.Pos)
	assert.Equal(t, Pos{Filename: "pos.dup", Offset: 6, Line: 2, Column: 5}, group.End)
	assert.Equal(t, Pos{Filename: "pos.dup", Offset: 5, Line: 2, Column: 4}, group.Children[0].Pos)
	assert.Equal(t, "pos.dup:2:3", group.Pos.String())
}

func TestLexErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		msg   string
		line  int
		col   int
	}{
		{"(]", "unexpected closing delimiter ']'", 1, 2},
		{"a {\n b", "unclosed delimiter '{'", 1, 3},
		{"x \"abc", "string literal not terminated", 1, 3},
		{"/* open", "comment not terminated", 1, 1},
		{"`raw", "raw string literal not terminated", 1, 1},
	}

	for _, tt := range tests {
		_, err := Lex("e.dup", tt.input)
		require.Error(t, err, tt.input)

		lexErr, ok := err.(*Error)
		require.True(t, ok, "%T", err)
		assert.Equal(t, tt.msg, lexErr.Msg, tt.input)
		assert.Equal(t, tt.line, lexErr.Pos.Line, tt.input)
		assert.Equal(t, tt.col, lexErr.Pos.Column, tt.input)
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	sources := []string{
		"package ints\n\nfunc Max() uint8 { return 255 }\n",
		"func main() {\n\t// hi\n\tx := 'a' + \"s\\\"\" /* c */\n\ty := []int{1, 2}[0]\n}\n",
		"impl<'a> Foo for &'a mut Bar { fn f(&self) -> bool { *self == 0x1p-2 } }",
		"  \n",
	}

	for _, src := range sources {
		f, err := Lex("rt.dup", src)
		require.NoError(t, err)
		assert.Equal(t, src, String(f.Tokens)+f.Trailer)
	}
}
