package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/store"
)

var (
	configPath string     // Path to powercalc.yaml; empty searches the working directory
	logLevel   string     // Log verbosity level; overrides log.level from the config
	outputFmt  string     // Output format: human, json or yaml
	appConfig  *AppConfig // Loaded by PersistentPreRun
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "powercalc",
	Short: "Hard adequacy verdicts and operational risk for distribution assets",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		level, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.Log.Level)
		}
		logrus.SetLevel(level)
		appConfig = cfg
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore opens and migrates the configured history database.
func openStore(ctx context.Context, cfg *AppConfig) (*store.SQLite, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// newService wires an assessment service. A nil st runs without ambient
// history or persistence.
func newService(cfg *AppConfig, st *store.SQLite) (*assessment.Service, error) {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}
	log := logrus.StandardLogger()
	opts, err := cfg.AssessorOptions(cat, log)
	if err != nil {
		return nil, err
	}
	svc := &assessment.Service{Assessor: assessment.New(opts), Log: log}
	if st != nil {
		svc.Ambient, svc.Assets, svc.History = st, st, st
	}
	return svc, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./powercalc.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "human", "Output format (human, json, yaml)")
}
