package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultTimeout  = 5 * time.Minute
	defaultCacheDir = ".dupl-cache"
)

var (
	cfgFile       string
	cacheDir      string
	timeout       time.Duration
	minimalErrors bool
	verbose       bool

	logger = zap.NewNop()
)

// errFailed is returned once the problems it stands for have been reported.
var errFailed = errors.New("dupl: failed")

var rootCmd = &cobra.Command{
	Use:              "dupl [paths...]",
	Short:            "dupl - expand duplicate!{...} templates into source files",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// dupl [path1 path2 ...] => behaves like the expand subcommand
		return expandCmd.RunE(expandCmd, args)
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}

// Execute runs the command line. Errors other than reported failures are
// printed to stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errFailed) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Configuration file (default \".dupl.yaml\")")
	flags.StringVar(&cacheDir, "cache-dir", defaultCacheDir, "Directory of the expansion cache")
	flags.DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the expansion")
	flags.BoolVar(&minimalErrors, "minimal-errors", false, "Print errors on a single line")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(expandCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}
