package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/dupl/expand"
)

// initCmd: dupl init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := initConfigurationFile(cfgFile)
		if err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}

func initConfigurationFile(configurationPath string) (string, error) {
	if configurationPath == "" {
		configurationPath = expand.DefaultConfigFile
	}
	return configurationPath, expand.WriteConfig(configurationPath, expand.DefaultConfig())
}
