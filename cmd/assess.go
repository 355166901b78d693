package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/engine/trace"
	"github.com/powercalc/powercalc/store"
)

type assessOptions struct {
	requestPath string
	noStore     bool
	trace       bool
	ambientC    *float64
	humidityPct *float64
	format      string
}

var (
	requestPath  string  // Request file (.json or YAML)
	noStore      bool    // Skip the history database
	traceChecks  bool    // Attach a check-level decision trace
	ambientFlag  float64 // Operational ambient override
	humidityFlag float64 // Relative humidity for the external risk term
)

// assessCmd runs one assessment from a request file
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess an asset from a request file",
	Run: func(cmd *cobra.Command, args []string) {
		o := assessOptions{
			requestPath: requestPath,
			noStore:     noStore,
			trace:       traceChecks,
			format:      outputFmt,
		}
		if cmd.Flags().Changed("ambient") {
			o.ambientC = &ambientFlag
		}
		if cmd.Flags().Changed("humidity") {
			o.humidityPct = &humidityFlag
		}
		if err := runAssess(cmd.Context(), appConfig, o, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Assessment failed: %v", err)
		}
	},
}

func runAssess(ctx context.Context, cfg *AppConfig, o assessOptions, w io.Writer) error {
	if o.requestPath == "" {
		return errors.New("request file not provided (use -f)")
	}
	req, err := assessment.LoadRequest(o.requestPath)
	if err != nil {
		return err
	}
	if o.trace {
		req.Trace = trace.TraceLevelChecks
	}
	if o.ambientC != nil {
		req.OperationalAmbientC = o.ambientC
	}
	if o.humidityPct != nil {
		req.HumidityPct = o.humidityPct
	}

	var st *store.SQLite
	if !o.noStore {
		if st, err = openStore(ctx, cfg); err != nil {
			return err
		}
		defer st.Close()
	}
	svc, err := newService(cfg, st)
	if err != nil {
		return err
	}
	out, err := svc.Run(ctx, *req)
	if out == nil {
		return err
	}
	if err != nil {
		logrus.WithError(err).Error("assessment not recorded")
	}
	return DisplayResults(w, out, o.format)
}

func init() {
	assessCmd.Flags().StringVarP(&requestPath, "file", "f", "", "Request file (.json or YAML)")
	assessCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not read or write the history database")
	assessCmd.Flags().BoolVar(&traceChecks, "trace", false, "Attach the check-level decision trace to the report")
	assessCmd.Flags().Float64Var(&ambientFlag, "ambient", 0, "Operational ambient in C (overrides the weather history)")
	assessCmd.Flags().Float64Var(&humidityFlag, "humidity", 0, "Relative humidity in % for the external risk term")
	rootCmd.AddCommand(assessCmd)
}
