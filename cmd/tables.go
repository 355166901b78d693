package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/catalog"
)

// tableView is one ampacity profile as printed by `tables show`.
type tableView struct {
	Version string          `json:"version" yaml:"version"`
	Profile string          `json:"profile" yaml:"profile"`
	Entries []catalog.Entry `json:"entries" yaml:"entries"`
}

// curveView is a tabulated protection characteristic.
type curveView struct {
	Curve   string              `json:"curve" yaml:"curve"`
	PickupA float64             `json:"pickup_a" yaml:"pickup_a"`
	TMS     float64             `json:"tms" yaml:"tms"`
	Points  []engine.CurvePoint `json:"points" yaml:"points"`
}

var (
	curvePickupA float64 // Pickup current in A
	curveTMS     float64 // Time multiplier setting
	curveMaxA    float64 // Largest tabulated current in A
	curvePoints  int     // Number of points
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect the engineering catalog",
}

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ampacity profiles",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := appConfig.LoadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load catalog: %v", err)
		}
		if err := listTables(cmd.OutOrStdout(), cat, outputFmt); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var tablesShowCmd = &cobra.Command{
	Use:   "show PROFILE",
	Short: "Print one ampacity profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := appConfig.LoadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load catalog: %v", err)
		}
		if err := showTable(cmd.OutOrStdout(), cat, args[0], outputFmt); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Tabulate the inverse-time protection curve",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := appConfig.LoadCatalog()
		if err != nil {
			logrus.Fatalf("Failed to load catalog: %v", err)
		}
		if err := showCurve(cmd.OutOrStdout(), cat, curvePickupA, curveTMS, curveMaxA, curvePoints, outputFmt); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func listTables(w io.Writer, cat *catalog.Catalog, format string) error {
	names := cat.ProfileNames()
	if format == "human" || format == "" {
		fmt.Fprintf(w, "catalog %s\n", cat.Version)
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %d sections\n", name, len(cat.Profiles[name]))
		}
		return nil
	}
	return DisplayResults(w, map[string]any{"version": cat.Version, "profiles": names}, format)
}

func showTable(w io.Writer, cat *catalog.Catalog, profile, format string) error {
	entries, err := cat.Table(profile)
	if err != nil {
		return err
	}
	return DisplayResults(w, &tableView{Version: cat.Version, Profile: profile, Entries: entries}, format)
}

func showCurve(w io.Writer, cat *catalog.Catalog, pickupA, tms, maxA float64, n int, format string) error {
	points, err := engine.NewCurve(cat.Curve).Points(pickupA, tms, maxA, n)
	if err != nil {
		return err
	}
	return DisplayResults(w, &curveView{Curve: cat.Curve.Name, PickupA: pickupA, TMS: tms, Points: points}, format)
}

func displayTable(w io.Writer, t *tableView) {
	cyan.Fprintf(w, "%s", t.Profile)
	fmt.Fprintf(w, "  catalog %s\n", t.Version)
	fmt.Fprintf(w, "%12s %12s\n", "S [mm2]", "I_base [A]")
	for _, e := range t.Entries {
		fmt.Fprintf(w, "%12g %12g\n", e.SectionMM2, e.BaseAmpacityA)
	}
}

func displayCurve(w io.Writer, c *curveView) {
	cyan.Fprintf(w, "%s", c.Curve)
	fmt.Fprintf(w, "  pickup %.0f A, TMS %g\n", c.PickupA, c.TMS)
	fmt.Fprintf(w, "%12s %10s\n", "I [A]", "t [s]")
	for _, p := range c.Points {
		fmt.Fprintf(w, "%12.0f %10.3f\n", p.CurrentA, p.TimeS)
	}
}

func init() {
	curveCmd.Flags().Float64Var(&curvePickupA, "pickup", 1000, "Pickup current in A")
	curveCmd.Flags().Float64Var(&curveTMS, "tms", 0.1, "Time multiplier setting")
	curveCmd.Flags().Float64Var(&curveMaxA, "max", 20000, "Largest tabulated current in A")
	curveCmd.Flags().IntVar(&curvePoints, "points", 20, "Number of log-spaced points")

	tablesCmd.AddCommand(tablesListCmd, tablesShowCmd)
	rootCmd.AddCommand(tablesCmd, curveCmd)
}
