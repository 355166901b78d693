package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/powercalc/powercalc/engine/assessment"
)

var historyLimit int // Number of records to print

var historyCmd = &cobra.Command{
	Use:   "history ASSET_ID",
	Short: "Print the assessment history of an asset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			logrus.Fatalf("Invalid asset id: %s", args[0])
		}
		if err := runHistory(cmd.Context(), appConfig, id, historyLimit, outputFmt, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("History failed: %v", err)
		}
	},
}

func runHistory(ctx context.Context, cfg *AppConfig, assetID int64, limit int, format string, w io.Writer) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	asset, err := st.Asset(ctx, assetID)
	if err != nil {
		return err
	}
	records, err := st.History(ctx, assetID, limit)
	if err != nil {
		return fmt.Errorf("asset %d: %w", assetID, err)
	}
	return DisplayResults(w, &historyView{
		Asset:      asset,
		Records:    records,
		Comparison: assessment.Compare(records),
	}, format)
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of records, newest first")
	rootCmd.AddCommand(historyCmd)
}
