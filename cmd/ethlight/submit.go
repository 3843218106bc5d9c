package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dominant-strategies/eth-light-client/cmd/utils"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/metrics_config"
)

var submitCmd = &cobra.Command{
	Use:   "submit <headers.json>",
	Short: "validates and appends headers",
	Long: `validates headers against the stored chain and appends them. The input holds
a stream of JSON headers or arrays of headers, "-" reads it from stdin. Arrays are
submitted as one batch whose proof-of-work checks run in parallel.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runSubmit,
	Example: `ethlight submit headers.json --account=alice`,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	for _, flag := range utils.MetricsFlags {
		utils.CreateAndBindFlag(flag, submitCmd)
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	r, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	if viper.GetBool(utils.MetricsEnabledFlag.Name) {
		metrics_config.EnableMetrics()
		if server := metrics_config.StartMetricsServer(viper.GetString(utils.MetricsAddrFlag.Name), log.Global); server != nil {
			defer server.Close()
		}
	}
	lc, db, err := utils.MakeLightClient(logSink{log.Global}, log.Global)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, origin := cmd.Context(), utils.Origin()
	dec := json.NewDecoder(r)
	var submitted int
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return fmt.Errorf("decode input: %w", err)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
			var headers []*types.Header
			if err := json.Unmarshal(raw, &headers); err != nil {
				return fmt.Errorf("decode headers: %w", err)
			}
			n, err := lc.SubmitHeaders(ctx, origin, headers)
			submitted += n
			if err != nil {
				return err
			}
			continue
		}
		header := new(types.Header)
		if err := json.Unmarshal(raw, header); err != nil {
			return fmt.Errorf("decode header: %w", err)
		}
		if err := lc.SubmitHeader(ctx, origin, header); err != nil {
			return err
		}
		submitted++
	}
	log.Global.WithFields(log.Fields{
		"submitted": submitted,
		"tip":       lc.ChainTip(),
	}).Info("Headers submitted")
	return nil
}
