package expand

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/dupl/duplicate"
	"github.com/gnolang/dupl/tokens"
)

func TestSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name: "call style",
			src: `package ints

duplicate!{
	[
		name typ;
		[Small] [uint8];
		[Large] [uint16];
	]
	type name typ
}
`,
			expected: "package ints\n\ntype Small uint8\n\ttype Large uint16\n",
		},
		{
			name: "call style inside a function",
			src: `func f() {
	duplicate!{[n; [1]; [2]] println(n)}
}
`,
			expected: "func f() {\n\tprintln(1)\n println(2)\n}\n",
		},
		{
			name:     "substitute call",
			src:      "var x = substitute!{[v [42];] v + v}\n",
			expected: "var x = 42 + 42\n",
		},
		{
			name: "annotation ends at blank line",
			src: `package p

// Doc.
#[duplicate_item(
	name  value;
	[One] [1];
	[Two] [2];
)]
const name = value

var after = 0
`,
			expected: "package p\n\n// Doc.\nconst One = 1\nconst Two = 2\n\nvar after = 0\n",
		},
		{
			name: "annotation ends at brace group",
			src: `#[substitute_item(typ [int64];)]
func Sum(xs []typ) typ {
	var s typ
	return s
}
var typ = 1
`,
			expected: "func Sum(xs []int64) int64 {\n\tvar s int64\n\treturn s\n}\nvar typ = 1\n",
		},
		{
			name:     "annotation ends at semicolon",
			src:      "#[duplicate_item(v; [a]; [b];)] x := v; y := v\n",
			expected: "x := a;\n x := b; y := v\n",
		},
		{
			name:     "stacked annotations",
			src:      "#[duplicate_item(a; [x]; [y];)]\n#[substitute_item(b [1];)]\nvar a = b\n",
			expected: "var x = 1\nvar y = 1\n",
		},
		{
			name:     "nested invocation in an annotated item",
			src:      "#[substitute_item(T [int];)]\nvar v = []T{duplicate!{[n; [1]; [2]] n,}}\n",
			expected: "var v = []int{ 1,\n 2,}\n",
		},
		{
			name:     "empty expansion keeps comments",
			src:      "a\n// c\nsubstitute!{[x [1];]}\nb\n",
			expected: "a\n// c\n\nb\n",
		},
		{
			name:     "plain code is untouched",
			src:      "package p\n\nfunc f() bool { return !duplicate != x }\n",
			expected: "package p\n\nfunc f() bool { return !duplicate != x }\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out, err := Source("t.go.dup", []byte(tt.src), DefaultConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestSourceCustomKeywords(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.Keywords = KeywordConfig{Duplicate: "dup", DuplicateItem: "dup_item"}

	out, err := Source("t.dup", []byte("dup!{[x; [1]] x} duplicate!{[y; [2]] y}\n#[dup_item(z; [3];)] z"), config)
	require.NoError(t, err)
	assert.Equal(t, "1 duplicate!{[y; [2]] y}\n3", string(out))
}

func TestSourceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		msg  string
		hint string
		pos  tokens.Pos
	}{
		{
			name: "payload not in brackets",
			src:  "duplicate!{x}",
			msg:  "Expected '['.",
			hint: "Expected invocation within brackets: [...]",
			pos:  tokens.Pos{Filename: "e.dup", Offset: 11, Line: 1, Column: 12},
		},
		{
			name: "empty invocation",
			src:  "duplicate!{}",
			msg:  "Expected '['.",
			hint: "Expected invocation within brackets: [...]",
			pos:  tokens.Pos{Filename: "e.dup", Offset: 10, Line: 1, Column: 11},
		},
		{
			name: "missing body",
			src:  "x duplicate!",
			msg:  "Expected '{', '[', or '('.",
			pos:  tokens.Pos{Filename: "e.dup", Offset: 11, Line: 1, Column: 12},
		},
		{
			name: "empty annotation payload",
			src:  "\n#[duplicate_item()] x",
			msg:  "Unexpected end of code.",
			pos:  tokens.Pos{Filename: "e.dup", Offset: 1, Line: 2, Column: 1},
		},
		{
			name: "ambiguous substitution",
			src:  "#[duplicate_item(a [1]; [a [2]])] a",
			msg:  "Multiple substitutions for identifier",
		},
		{
			name: "substitute payload with groups",
			src:  "substitute!{[a [1]; [b [2]]] a}",
			msg:  "Unexpected delimiter.",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Source("e.dup", []byte(tt.src), DefaultConfig())
			require.Error(t, err)

			var e *duplicate.Error
			require.True(t, errors.As(err, &e), "unexpected error %T", err)
			assert.Equal(t, tt.msg, e.Msg)
			if tt.hint != "" {
				assert.Equal(t, tt.hint, e.Hint)
			}
			if tt.pos.IsValid() {
				assert.Equal(t, tt.pos, e.Pos)
			}
		})
	}
}

func TestSourceLexError(t *testing.T) {
	t.Parallel()

	_, err := Source("e.dup", []byte("duplicate!{[x; [1]] x"), DefaultConfig())
	var e *tokens.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "unclosed delimiter '{'", e.Msg)
}
