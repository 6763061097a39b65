package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/dupl/expand"
)

const template = `package ints

duplicate!{
	[name; [A]; [B]]
	const name = 1
}
`

const expanded = `// Code generated by dupl. DO NOT EDIT.

package ints

const A = 1
const B = 1
`

// safeBuffer is a bytes.Buffer that may be written and read concurrently.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func createTempFileWithContent(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunExpand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := createTempFileWithContent(t, dir, "ints.go.dup", template)
	output := filepath.Join(dir, "ints.go")

	var out, errOut bytes.Buffer
	engine := expand.New(expand.DefaultConfig(), nil, false)

	err := runExpand(context.Background(), zap.NewNop(), newReporter(&out, &errOut, false, false), engine, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, "Generated "+output+"\n", out.String())
	assert.Empty(t, errOut.String())

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, expanded, string(written))

	out.Reset()
	err = runExpand(context.Background(), zap.NewNop(), newReporter(&out, &errOut, false, false), engine, []string{path})
	require.NoError(t, err)
	assert.Empty(t, out.String())
}

func TestRunExpandDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := createTempFileWithContent(t, dir, "ints.go.dup", template)

	var out, errOut bytes.Buffer
	engine := expand.New(expand.DefaultConfig(), nil, true)

	err := runExpand(context.Background(), zap.NewNop(), newReporter(&out, &errOut, true, false), engine, []string{path})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "+const A = 1\n")
	assert.Contains(t, out.String(), "+const B = 1\n")

	_, err = os.Stat(filepath.Join(dir, "ints.go"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunExpandErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minimal  bool
		expected func(path string) string
	}{
		{
			name: "rich",
			expected: func(path string) string {
				return "error: Expected '['.\n" +
					" --> " + path + ":2:12\n" +
					"  |\n" +
					"2 | duplicate!{x}\n" +
					"  |            ^\n" +
					"  = Expected invocation within brackets: [...]\n"
			},
		},
		{
			name:    "minimal",
			minimal: true,
			expected: func(path string) string {
				return path + ":2:12: Expected '['.\n"
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			path := createTempFileWithContent(t, dir, "bad.go.dup", "package bad\nduplicate!{x}\n")

			var out, errOut bytes.Buffer
			engine := expand.New(expand.DefaultConfig(), nil, false)
			err := runExpand(context.Background(), zap.NewNop(), newReporter(&out, &errOut, false, tt.minimal), engine, []string{dir})
			assert.ErrorIs(t, err, errFailed)
			assert.Empty(t, out.String())
			assert.Equal(t, tt.expected(path), errOut.String())
		})
	}
}

func TestRunExpandMissingPath(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	engine := expand.New(expand.DefaultConfig(), nil, false)
	err := runExpand(context.Background(), zap.NewNop(), newReporter(&out, &errOut, false, false), engine,
		[]string{filepath.Join(t.TempDir(), "missing")})
	assert.ErrorContains(t, err, "error accessing")
}

func TestRunStdin(t *testing.T) {
	t.Parallel()

	engine := expand.New(expand.DefaultConfig(), nil, true)

	var out, errOut bytes.Buffer
	err := runStdin(strings.NewReader(template), &out, &errOut, engine, "ints.go.dup", false)
	require.NoError(t, err)
	assert.Equal(t, expanded, out.String())

	out.Reset()
	err = runStdin(strings.NewReader("duplicate!{x}"), &out, &errOut, engine, "<stdin>", true)
	assert.ErrorIs(t, err, errFailed)
	assert.Empty(t, out.String())
	assert.Equal(t, "<stdin>:1:12: Expected '['.\n", errOut.String())
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	createTempFileWithContent(t, dir, "ints.go.dup", template)
	output := createTempFileWithContent(t, dir, "ints.go", "package ints\n")

	engine := expand.New(expand.DefaultConfig(), nil, true)

	var out, errOut bytes.Buffer
	err := runCheck(context.Background(), zap.NewNop(), newReporter(&out, &errOut, true, false), engine, []string{dir}, false)
	assert.ErrorIs(t, err, errFailed)
	assert.Equal(t, output+" is out of date with "+output+".dup\n", out.String())

	out.Reset()
	err = runCheck(context.Background(), zap.NewNop(), newReporter(&out, &errOut, true, false), engine, []string{dir}, true)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out.String(), "+const A = 1\n")

	require.NoError(t, os.WriteFile(output, []byte(expanded), 0o644))
	out.Reset()
	err = runCheck(context.Background(), zap.NewNop(), newReporter(&out, &errOut, true, false), engine, []string{dir}, false)
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestRunWatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := createTempFileWithContent(t, dir, "a.go.dup", template)

	var out, errOut safeBuffer
	engine := expand.New(expand.DefaultConfig(), nil, false)
	r := newReporter(&out, &errOut, false, false)

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- runWatch(ctx, zap.NewNop(), r, engine, []string{dir}, ready)
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("watch stopped early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not start")
	}
	assert.Equal(t, "Generated "+filepath.Join(dir, "a.go")+"\n", out.String())

	createTempFileWithContent(t, dir, "b.go.dup", strings.ReplaceAll(template, "A", "C"))
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Generated "+filepath.Join(dir, "b.go")+"\n")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	_, err := os.Stat(first)
	assert.NoError(t, err)
	assert.Empty(t, errOut.String())
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "custom.yaml")

	got, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	config, err := expand.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, expand.DefaultConfig(), config)
}

func TestExecuteInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dupl.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", path, "init"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "Configuration file created/updated: "+path+"\n", out.String())
	assert.FileExists(t, path)
}
