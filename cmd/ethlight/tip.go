package main

import (
	"github.com/spf13/cobra"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
)

var tipCmd = &cobra.Command{
	Use:   "tip",
	Short: "prints the state of the light chain",
	Args:  cobra.NoArgs,
	RunE:  runTip,
}

func init() {
	rootCmd.AddCommand(tipCmd)
}

type chainState struct {
	Genesis             *types.Header   `json:"genesis"`
	Tip                 *types.ChainTip `json:"tip"`
	AuthorityBestNumber uint64          `json:"authorityBestNumber"`
	Confirmations       uint64          `json:"confirmations"`
}

func runTip(cmd *cobra.Command, args []string) error {
	lc, db, err := utils.MakeLightClient(nil, log.Global)
	if err != nil {
		return err
	}
	defer db.Close()
	return printJSON(cmd.OutOrStdout(), chainState{
		Genesis:             lc.Genesis(),
		Tip:                 lc.ChainTip(),
		AuthorityBestNumber: lc.AuthorityBestNumber(),
		Confirmations:       lc.Confirmations(),
	})
}
