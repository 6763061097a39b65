package expand

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/dupl/scanner"
)

// ProcessSource expands one in-memory template.
func ProcessSource(engine Expander, name string, source []byte) ([]byte, error) {
	return engine.RunSource(name, source)
}

// ProcessFile expands one template file.
func ProcessFile(engine Expander, path string) (Result, error) {
	return engine.Run(path)
}

// ProcessFiles processes every path in turn. See ProcessPath.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Expander,
	paths []string,
	processor func(Expander, string) (Result, error),
) ([]Result, error) {
	var all []Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		all = append(all, results...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
	}
	return all, nil
}

// ProcessPath runs processor on path, or on every template below path when
// it is a directory. Templates are processed concurrently. The failure of a
// single template is recorded in its Result; the returned error is only set
// when path cannot be read or ctx is done, in which case the results of the
// templates processed so far are returned along with it.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Expander,
	path string,
	processor func(Expander, string) (Result, error),
) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	s := scanner.New(path, engine.Extensions()...)
	if !info.IsDir() {
		if !s.IsTarget(path) {
			if logger != nil {
				logger.Warn("Skipping file without template extension", zap.String("file", path))
			}
			return nil, nil
		}
		return []Result{processOne(logger, engine, path, processor)}, nil
	}

	files, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(path),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]Result, len(files))
	done := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		if ctx.Err() != nil {
			break
		}
		i, file := i, file
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if bar != nil {
				bar.Describe(filepath.Base(file.Path))
			}
			results[i] = processOne(logger, engine, file.Path, processor)
			done[i] = true
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	processed := make([]Result, 0, len(files))
	for i := range results {
		if done[i] {
			processed = append(processed, results[i])
		}
	}
	return processed, ctx.Err()
}

func processOne(logger *zap.Logger, engine Expander, path string, processor func(Expander, string) (Result, error)) Result {
	res, err := processor(engine, path)
	if res.Template == "" {
		res.Template = path
	}
	if err != nil {
		if logger != nil {
			logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
		}
		res.Err = err
		return res
	}
	if logger != nil {
		logger.Debug("Processed template",
			zap.String("file", path),
			zap.Bool("changed", res.Changed),
			zap.Bool("cached", res.Cached))
	}
	return res
}
