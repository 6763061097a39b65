package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/dupl/expand"
	"github.com/gnolang/dupl/internal"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Expand templates again whenever they are written",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"."}
		}

		config, err := expand.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		engine, err := newEngine(config, true, false)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		r := newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), false, minimalErrors || config.MinimalErrors)
		return runWatch(ctx, logger, r, engine, args, nil)
	},
}

// runWatch expands everything below dirs once, then every template written
// until ctx is done. ready, if not nil, is closed once watching started.
func runWatch(ctx context.Context, logger *zap.Logger, r *reporter, engine expand.Expander, dirs []string, ready chan<- struct{}) error {
	results, err := expand.ProcessFiles(ctx, logger, engine, dirs, expand.ProcessFile)
	if err != nil {
		return err
	}
	r.results(results)

	w, err := internal.NewWatcher(logger, dirs, engine.Extensions(), func(path string) {
		res, err := expand.ProcessFile(engine, path)
		if err != nil {
			res.Template = path
			res.Err = err
		}
		r.results([]expand.Result{res})
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	logger.Info("Watching for template changes", zap.Strings("dirs", dirs))
	if ready != nil {
		close(ready)
	}

	<-ctx.Done()
	return w.Stop()
}
