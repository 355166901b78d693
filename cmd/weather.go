package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/store"
)

var (
	weatherSite     string  // Site code
	weatherTemp     float64 // Ambient temperature in C
	weatherHumidity float64 // Relative humidity in %
	weatherAt       string  // Observation time, RFC 3339
	weatherLimit    int     // Averaging window
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Record and query site weather snapshots",
}

var weatherAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a weather snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		snap := store.WeatherSnapshot{Site: weatherSite}
		if cmd.Flags().Changed("temp") {
			snap.TempC = &weatherTemp
		}
		if cmd.Flags().Changed("humidity") {
			snap.HumidityPct = &weatherHumidity
		}
		if weatherAt != "" {
			at, err := time.Parse(time.RFC3339, weatherAt)
			if err != nil {
				logrus.Fatalf("Invalid --at: %v", err)
			}
			snap.At = at
		}
		if err := runWeatherAdd(cmd.Context(), appConfig, snap, outputFmt, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Failed to record weather: %v", err)
		}
	},
}

var weatherAvgCmd = &cobra.Command{
	Use:   "avg",
	Short: "Average the recent temperatures of a site",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWeatherAvg(cmd.Context(), appConfig, weatherSite, weatherLimit, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Failed to read weather: %v", err)
		}
	},
}

func runWeatherAdd(ctx context.Context, cfg *AppConfig, snap store.WeatherSnapshot, format string, w io.Writer) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	saved, err := st.AddWeather(ctx, snap)
	if err != nil {
		return err
	}
	if format == "human" || format == "" {
		_, err = fmt.Fprintf(w, "snapshot %d  site %s  external risk %.1f\n", saved.ID, saved.Site, saved.ExternalScore)
		return err
	}
	return DisplayResults(w, saved, format)
}

func runWeatherAvg(ctx context.Context, cfg *AppConfig, site string, limit int, w io.Writer) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	avg, err := st.RecentAverageTemp(ctx, site, limit)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %s\n", site, optional(avg, "%.1f C"))
	return err
}

func init() {
	weatherCmd.PersistentFlags().StringVar(&weatherSite, "site", assessment.DefaultSite, "Site code")
	weatherAddCmd.Flags().Float64Var(&weatherTemp, "temp", 0, "Ambient temperature in C")
	weatherAddCmd.Flags().Float64Var(&weatherHumidity, "humidity", 0, "Relative humidity in %")
	weatherAddCmd.Flags().StringVar(&weatherAt, "at", "", "Observation time, RFC 3339 (default now)")
	weatherAvgCmd.Flags().IntVar(&weatherLimit, "limit", assessment.DefaultAmbientWindow, "Number of newest snapshots to average")

	weatherCmd.AddCommand(weatherAddCmd, weatherAvgCmd)
	rootCmd.AddCommand(weatherCmd)
}
