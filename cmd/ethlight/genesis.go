package main

import (
	"github.com/spf13/cobra"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
)

var genesisCmd = &cobra.Command{
	Use:     "genesis <header.json>",
	Short:   "sets the trusted genesis header",
	Long:    `sets the trusted header all submitted headers have to descend from. It can only be set once and requires a privileged account.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runGenesis,
	Example: `ethlight genesis header.json --account=root`,
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}

func runGenesis(cmd *cobra.Command, args []string) error {
	header := new(types.Header)
	if err := readJSON(args[0], header); err != nil {
		return err
	}
	lc, db, err := utils.MakeLightClient(logSink{log.Global}, log.Global)
	if err != nil {
		return err
	}
	defer db.Close()
	return lc.SetGenesisHeader(cmd.Context(), utils.Origin(), header)
}
