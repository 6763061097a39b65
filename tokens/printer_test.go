package tokens

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSynthesized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		toks []Token
		want string
	}{
		{
			name: "adjacent identifiers are separated",
			toks: []Token{NewIdent("mut"), NewIdent("x")},
			want: "mut x",
		},
		{
			name: "punctuation binds",
			toks: []Token{NewPunct('&'), NewIdent("x")},
			want: "&x",
		},
		{
			name: "groups",
			toks: []Token{NewIdent("f"), NewGroup(Parenthesis, NewLiteral("1"), NewPunct(','), NewLiteral("2"))},
			want: "f(1,2)",
		},
		{
			name: "comment openers are not formed",
			toks: []Token{NewPunct('/'), NewPunct('/')},
			want: "/ /",
		},
		{
			name: "alone punctuation is kept apart",
			toks: []Token{NewPunct('-'), NewPunct('-'), NewLiteral("128")},
			want: "- -128",
		},
		{
			name: "joint punctuation binds",
			toks: []Token{{Kind: Punct, Text: ":", Spacing: Joint}, NewPunct('='), NewLiteral("1")},
			want: ":=1",
		},
		{
			name: "transparent groups are inlined",
			toks: []Token{NewIdent("a"), NewGroup(None, NewPunct('.'), NewIdent("b")).WithLead(" ")},
			want: "a .b",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, String(tt.toks))
		})
	}
}

func TestFprint(t *testing.T) {
	t.Parallel()

	f, err := Lex("x.dup", "a { b }\n// end\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Fprint(&buf, f.Tokens, f.Trailer))
	assert.Equal(t, "a { b }\n// end\n", buf.String())
}

func TestStringRelexes(t *testing.T) {
	t.Parallel()

	toks := []Token{
		NewIdent("x"), NewPunct('='), NewPunct('&'),
		NewGroup(None, NewPunct('&'), NewIdent("v")),
		NewPunct('-'), NewPunct('>'), NewPunct('/'), NewPunct('*'),
	}
	relexed, err := LexString(String(toks))
	require.NoError(t, err)
	assert.True(t, Equal(toks, relexed), String(toks))
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	toks := []Token{
		NewIdent("a"),
		NewGroup(None, NewIdent("b"), NewGroup(Brace, NewGroup(None, NewIdent("c")))).WithLead(" "),
	}
	flat := Flatten(toks)

	require.Len(t, flat, 3)
	assert.Equal(t, " ", flat[1].Lead)
	assert.True(t, flat[2].IsGroup(Brace))
	assert.True(t, Equal([]Token{NewIdent("c")}, flat[2].Children))
	assert.Equal(t, "a b {c}", Describe(flat))
}

func TestEqualIgnoresTrivia(t *testing.T) {
	t.Parallel()

	a, err := LexString("f ( x ,y )")
	require.NoError(t, err)
	b, err := LexString("f(x, y)")
	require.NoError(t, err)
	c, err := LexString("f(x; y)")
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}
