package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
)

// receiptClaim is the input of verify-receipt.
type receiptClaim struct {
	BlockNumber hexutil.Uint64      `json:"blockNumber"`
	Proof       *types.ReceiptProof `json:"proof"`
	Receipt     *types.Receipt      `json:"receipt"`
}

var verifyReceiptCmd = &cobra.Command{
	Use:   "verify-receipt <claim.json>",
	Short: "verifies a receipt inclusion proof",
	Long: `verifies that a receipt is included in a block of the light chain. The claim
holds the block number, the receipts trie proof and the receipt in RPC format.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runVerifyReceipt,
	Example: `ethlight verify-receipt claim.json --account=alice`,
}

func init() {
	rootCmd.AddCommand(verifyReceiptCmd)
}

func runVerifyReceipt(cmd *cobra.Command, args []string) error {
	var claim receiptClaim
	if err := readJSON(args[0], &claim); err != nil {
		return err
	}
	if claim.Proof == nil || claim.Receipt == nil {
		return fmt.Errorf("claim %s needs a proof and a receipt", args[0])
	}
	lc, db, err := utils.MakeLightClient(logSink{log.Global}, log.Global)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := lc.VerifyReceipt(cmd.Context(), utils.Origin(), uint64(claim.BlockNumber), claim.Proof, claim.Receipt); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "receipt %d of block %d verified\n", claim.Proof.Index, uint64(claim.BlockNumber))
	return nil
}
