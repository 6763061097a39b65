package expand

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnolang/dupl/internal"
)

// Expander expands templates.
type Expander interface {
	Run(path string) (Result, error)
	RunSource(name string, source []byte) ([]byte, error)
	Extensions() []string
}

// Result is the outcome of expanding one template file.
type Result struct {
	Template string
	Output   string
	// Content is the generated file.
	Content []byte
	// Previous is what the output file held before, nil if it did not exist.
	Previous []byte
	// Changed is set when Content differs from Previous.
	Changed bool
	// Cached is set when the expansion was taken from the cache.
	Cached bool
	// Err is the failure of the expansion, if any.
	Err error
}

// Engine expands template files into generated files next to them.
type Engine struct {
	config Config
	cache  *internal.Cache
	dryRun bool
}

// New returns an engine. cache may be nil. In dry-run mode nothing is
// written.
func New(config Config, cache *internal.Cache, dryRun bool) *Engine {
	return &Engine{config: config, cache: cache, dryRun: dryRun}
}

func (e *Engine) Extensions() []string { return e.config.Extensions }

// RunSource expands source and prepares it as the content of the generated
// file: the configured header is added and Go output is formatted.
func (e *Engine) RunSource(name string, source []byte) ([]byte, error) {
	out, err := Source(name, source, e.config)
	if err != nil {
		return nil, err
	}

	if e.config.Header != "" {
		out = append([]byte(e.config.Header+"\n\n"), bytes.TrimLeft(out, "\n")...)
	}

	output, _ := OutputPath(name, e.config.Extensions)
	if e.config.Format && strings.HasSuffix(output, ".go") {
		formatted, err := format.Source(out)
		if err != nil {
			return nil, fmt.Errorf("formatting expansion of %s: %w", name, err)
		}
		out = formatted
	}
	return out, nil
}

// Run expands the template at path and writes the generated file when it
// changed.
func (e *Engine) Run(path string) (Result, error) {
	output, ok := OutputPath(path, e.config.Extensions)
	if !ok {
		return Result{}, fmt.Errorf("%s is not a template", path)
	}
	res := Result{Template: path, Output: output}

	previous, err := os.ReadFile(output)
	switch {
	case err == nil:
		res.Previous = previous
	case !errors.Is(err, fs.ErrNotExist):
		return res, err
	}

	if e.cache != nil {
		if content, ok := e.cache.Get(path); ok && res.Previous != nil && bytes.Equal(content, res.Previous) {
			res.Content = content
			res.Cached = true
			return res, nil
		}
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}
	content, err := e.RunSource(path, source)
	if err != nil {
		return res, err
	}
	res.Content = content
	res.Changed = res.Previous == nil || !bytes.Equal(content, res.Previous)

	if res.Changed && !e.dryRun {
		if err := os.WriteFile(output, content, 0o644); err != nil {
			return res, fmt.Errorf("writing %s: %w", output, err)
		}
	}
	if e.cache != nil && !e.dryRun {
		if err := e.cache.Set(path, content); err != nil {
			return res, err
		}
	}
	return res, nil
}

// OutputPath returns the name of the file generated from the template path,
// which is path without its template extension.
func OutputPath(path string, extensions []string) (string, bool) {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if e == ext && len(path) > len(ext) {
			return strings.TrimSuffix(path, ext), true
		}
	}
	return path, false
}
