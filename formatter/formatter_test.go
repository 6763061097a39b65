package formatter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/dupl/duplicate"
	"github.com/gnolang/dupl/internal"
	"github.com/gnolang/dupl/tokens"
)

func TestFormatError(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{
		Lines: []string{
			"duplicate!{",
			"    [int_type max; [u8] [255];",
			"    [u16] (65535);]",
			"}",
		},
	}

	err := &duplicate.Error{
		Msg:  "Expected '['.",
		Pos:  tokens.Pos{Filename: "ints.go.dup", Line: 3, Column: 11},
		Hint: "Hint: Each substitution must be enclosed in '[]'.\nExample:\n    [sub1] [sub2]",
	}

	expected := `error: Expected '['.
 --> ints.go.dup:3:11
  |
3 | [u16] (65535);]
  |       ^
  = Hint: Each substitution must be enclosed in '[]'.
    Example:
        [sub1] [sub2]
`

	assert.Equal(t, expected, FormatError(err, code))
}

func TestFormatErrorTabsAndWideLineNumbers(t *testing.T) {
	t.Parallel()
	lines := make([]string, 12)
	lines[11] = "\tf(x\ty)"
	code := &internal.SourceCode{Lines: lines}

	err := &duplicate.Error{
		Msg: "Expected 1 substitution arguments but got 2",
		Pos: tokens.Pos{Filename: "a.dup", Line: 12, Column: 6},
	}

	expected := `error: Expected 1 substitution arguments but got 2
  --> a.dup:12:6
   |
12 | f(x     y)
   |         ^
`

	assert.Equal(t, expected, FormatError(err, code))
}

func TestFormatErrorWithoutSnippet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		source   *internal.SourceCode
		expected string
	}{
		{
			name:     "no position",
			err:      &duplicate.Error{Msg: "No substitution groups.", Hint: "Hint: add one."},
			expected: "error: No substitution groups.\n  = Hint: add one.\n",
		},
		{
			name:     "no source",
			err:      &duplicate.Error{Msg: "Unexpected token.", Pos: tokens.Pos{Filename: "x.dup", Line: 2, Column: 1}},
			expected: "error: Unexpected token.\n --> x.dup:2:1\n",
		},
		{
			name:     "line out of range",
			err:      &duplicate.Error{Msg: "Unexpected token.", Pos: tokens.Pos{Filename: "x.dup", Line: 9, Column: 1}},
			source:   &internal.SourceCode{Lines: []string{"a"}},
			expected: "error: Unexpected token.\n --> x.dup:9:1\n",
		},
		{
			name:     "plain error",
			err:      errors.New("open x.dup: no such file or directory"),
			expected: "error: open x.dup: no such file or directory\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FormatError(tt.err, tt.source))
		})
	}
}

func TestFormatLexError(t *testing.T) {
	t.Parallel()

	_, err := tokens.Lex("bad.dup", "x := (1, 2")
	require.Error(t, err)

	wrapped := fmt.Errorf("expanding bad.dup: %w", err)
	assert.Equal(t, "bad.dup:1:6: unclosed delimiter '('", FormatErrorMinimal(wrapped))

	expected := `error: unclosed delimiter '('
 --> bad.dup:1:6
  |
1 | x := (1, 2
  |      ^
`
	assert.Equal(t, expected, FormatError(wrapped, internal.NewSourceCode([]byte("x := (1, 2"))))
}

func TestFormatErrorMinimal(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("expanding: %w", &duplicate.Error{
		Msg:  "Unexpected delimiter.",
		Pos:  tokens.Pos{Filename: "p.dup", Line: 1, Column: 8},
		Hint: "ignored",
	})
	assert.Equal(t, "p.dup:1:8: Unexpected delimiter.", FormatErrorMinimal(err))
	assert.Equal(t, "boom", FormatErrorMinimal(errors.New("boom")))
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"\tx", 2, 8},
		{"a\tb", 3, 8},
		{"ab", 10, 2},
		{"ab", -1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateVisualColumn(tt.line, tt.column), "%q col %d", tt.line, tt.column)
	}
}
