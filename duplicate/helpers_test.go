package duplicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/dupl/tokens"
)

func lex(t *testing.T, src string) []tokens.Token {
	t.Helper()
	f, err := tokens.Lex("test.dup", src)
	require.NoError(t, err)
	return f.Tokens
}

func runDuplicate(t *testing.T, payload, item string, opts ...Option) ([]tokens.Token, error) {
	t.Helper()
	return Duplicate(lex(t, payload), lex(t, item), opts...)
}

// assertTokens compares token trees by structure, ignoring layout.
func assertTokens(t *testing.T, want string, got []tokens.Token) {
	t.Helper()
	assert.Equal(t, tokens.Describe(lex(t, want)), tokens.Describe(got))
}

func requireError(t *testing.T, err error, msg string) *Error {
	t.Helper()
	require.Error(t, err)
	var e *Error
	require.True(t, errors.As(err, &e), "unexpected error type %T", err)
	assert.Equal(t, msg, e.Msg)
	return e
}
