package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSourceCode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.go.dup")
	require.NoError(t, os.WriteFile(path, []byte("package a\n\nduplicate!{[x; [1]] x}\n"), 0o644))

	code, err := ReadSourceCode(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"package a", "", "duplicate!{[x; [1]] x}", ""}, code.Lines)

	_, err = ReadSourceCode(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
