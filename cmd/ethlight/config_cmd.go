package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/dominant-strategies/eth-light-client/log"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "creates the default config file",
	Long: `creates the default config file in the location specified by the --config-dir flag.
The default config file will contain all the default values for the flags.`,
	RunE:    runConfig,
	Args:    cobra.NoArgs,
	Example: `ethlight config --config-dir=./ethlight`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	configDir := filepath.Clean(cmd.Flag(utils.ConfigDirFlag.Name).Value.String())
	path, err := utils.WriteDefaultConfigFile(configDir, utils.GlobalFlags, utils.DatabaseFlags, utils.EthashFlags, utils.MetricsFlags)
	if err != nil {
		return err
	}
	log.Global.WithField("path", path).Info("Initialized new config file.")
	return nil
}
