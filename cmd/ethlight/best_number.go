package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/dominant-strategies/eth-light-client/log"
)

var bestNumberCmd = &cobra.Command{
	Use:     "best-number <number>",
	Short:   "records the best block number reported by the authority",
	Long:    `records the best block number reported by the trusted authority. Headers are appended once they are more than --confirmations blocks below it. The number never decreases.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runBestNumber,
	Example: `ethlight best-number 12965000 --account=root`,
}

func init() {
	rootCmd.AddCommand(bestNumberCmd)
}

func runBestNumber(cmd *cobra.Command, args []string) error {
	number, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return err
	}
	lc, db, err := utils.MakeLightClient(logSink{log.Global}, log.Global)
	if err != nil {
		return err
	}
	defer db.Close()
	return lc.SetAuthorityBestNumber(cmd.Context(), utils.Origin(), number)
}
