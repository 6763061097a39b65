package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/dupl/expand"
	"github.com/gnolang/dupl/formatter"
	"github.com/gnolang/dupl/internal"
)

const stdinPath = "-"

var (
	dryRun    bool
	noCache   bool
	stdinName string
)

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Expand templates into generated files",
	Long: `Expand every template found in paths and write the generated files next
to them. A template named ints.go.dup generates ints.go.

With "-" as only path, a template is read from stdin and its expansion is
written to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		config, err := expand.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		minimal := minimalErrors || config.MinimalErrors

		if len(args) == 1 && args[0] == stdinPath {
			engine := expand.New(config, nil, true)
			return runStdin(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), engine, stdinName, minimal)
		}

		engine, err := newEngine(config, !noCache, dryRun)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return runExpand(ctx, logger, newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), dryRun, minimal), engine, args)
	},
}

func init() {
	expandCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print a diff of the changes instead of writing them")
	expandCmd.Flags().BoolVar(&noCache, "no-cache", false, "Expand every template, even unchanged ones")
	expandCmd.Flags().StringVar(&stdinName, "stdin-name", "<stdin>", "Template name used for stdin, e.g. x.go.dup to format the output as Go")
}

// newEngine returns an expansion engine for config. The cache is only used
// when files are written.
func newEngine(config expand.Config, useCache, dryRun bool) (*expand.Engine, error) {
	var cache *internal.Cache
	if useCache && !dryRun {
		dependency := cfgFile
		if dependency == "" {
			dependency = expand.DefaultConfigFile
		}
		c, err := internal.NewCache(cacheDir, dependency)
		if err != nil {
			return nil, err
		}
		cache = c
	}
	return expand.New(config, cache, dryRun), nil
}

func runExpand(ctx context.Context, logger *zap.Logger, r *reporter, engine expand.Expander, paths []string) error {
	results, err := expand.ProcessFiles(ctx, logger, engine, paths, expand.ProcessFile)
	failed := r.results(results)
	if err != nil {
		return err
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}

func runStdin(in io.Reader, out, errOut io.Writer, engine expand.Expander, name string, minimal bool) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	expanded, err := expand.ProcessSource(engine, name, source)
	if err != nil {
		fmt.Fprint(errOut, renderError(err, internal.NewSourceCode(source), minimal))
		return errFailed
	}
	_, err = out.Write(expanded)
	return err
}

// reporter prints expansion results. It may be used from several
// goroutines.
type reporter struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	dryRun  bool
	minimal bool
}

func newReporter(out, errOut io.Writer, dryRun, minimal bool) *reporter {
	return &reporter{out: out, errOut: errOut, dryRun: dryRun, minimal: minimal}
}

// results prints results and returns how many of them failed.
func (r *reporter) results(results []expand.Result) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			source, _ := internal.ReadSourceCode(res.Template)
			fmt.Fprint(r.errOut, renderError(res.Err, source, r.minimal))
		case !res.Changed:
		case r.dryRun:
			diff, err := res.Diff()
			if err != nil {
				failed++
				fmt.Fprintf(r.errOut, "error: %s: %v\n", res.Output, err)
				continue
			}
			fmt.Fprint(r.out, diff)
		default:
			fmt.Fprintf(r.out, "Generated %s\n", res.Output)
		}
	}
	return failed
}

func renderError(err error, source *internal.SourceCode, minimal bool) string {
	if minimal {
		return formatter.FormatErrorMinimal(err) + "\n"
	}
	return formatter.FormatError(err, source)
}
