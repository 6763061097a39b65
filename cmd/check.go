package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/dupl/expand"
)

var showDiff bool

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Fail when a generated file is out of date",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}

		config, err := expand.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		r := newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), true, minimalErrors || config.MinimalErrors)
		return runCheck(ctx, logger, r, expand.New(config, nil, true), args, showDiff)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&showDiff, "diff", false, "Print how stale files differ from their expansion")
}

func runCheck(ctx context.Context, logger *zap.Logger, r *reporter, engine expand.Expander, paths []string, diff bool) error {
	results, err := expand.ProcessFiles(ctx, logger, engine, paths, expand.ProcessFile)
	if err != nil {
		return err
	}

	var report []expand.Result
	for _, res := range results {
		switch {
		case res.Err != nil:
			report = append(report, res)
		case res.Changed:
			fmt.Fprintf(r.out, "%s is out of date with %s\n", res.Output, res.Template)
			if diff {
				report = append(report, res)
			}
		}
	}
	r.results(report)

	for _, res := range results {
		if res.Err != nil || res.Changed {
			return errFailed
		}
	}
	return nil
}
