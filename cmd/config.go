package cmd

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/powercalc/powercalc/engine/assessment"
	"github.com/powercalc/powercalc/engine/catalog"
	"github.com/powercalc/powercalc/engine/risk"
)

// AppConfig is the application configuration: powercalc.yaml in the working
// directory (or --config), overridden by POWERCALC_* environment variables.
type AppConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Store   StoreConfig   `mapstructure:"store"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Server  ServerConfig  `mapstructure:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// CatalogConfig selects the engineering reference data; an empty path uses
// the embedded catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type RiskConfig struct {
	DurationLimitS float64              `mapstructure:"duration_limit_s"`
	Bootstrap      risk.EstimatorConfig `mapstructure:"bootstrap"`
	Levels         risk.LevelThresholds `mapstructure:"levels"`
}

// ServerConfig configures `serve`. RateLimit is the sustained assessments
// per second; 0 disables the limit.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"`
}

// LoadConfig reads the app config. An empty path searches for powercalc.yaml
// in the working directory and tolerates its absence; an explicit path must exist.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("powercalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("POWERCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	levels := risk.DefaultLevelThresholds()
	est := risk.DefaultEstimatorConfig()
	v.SetDefault("log.level", "warn")
	v.SetDefault("store.path", "powercalc.db")
	v.SetDefault("catalog.path", "")
	v.SetDefault("risk.duration_limit_s", risk.DefaultDurationLimitS)
	v.SetDefault("risk.bootstrap.draws", est.BootstrapDraws)
	v.SetDefault("risk.bootstrap.workers", 0)
	v.SetDefault("risk.bootstrap.seed", int64(est.Seed))
	v.SetDefault("risk.bootstrap.return_period", est.ReturnPeriod)
	v.SetDefault("risk.bootstrap.skip", false)
	v.SetDefault("risk.levels.very_high", levels.VeryHigh)
	v.SetDefault("risk.levels.high", levels.High)
	v.SetDefault("risk.levels.moderate", levels.Moderate)
	v.SetDefault("risk.levels.low", levels.Low)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.burst", 20)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// LoadCatalog returns the configured catalog.
func (c *AppConfig) LoadCatalog() (*catalog.Catalog, error) {
	if c.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.Catalog.Path)
}

// AssessorOptions builds assessor options from the config.
func (c *AppConfig) AssessorOptions(cat *catalog.Catalog, log logrus.FieldLogger) (assessment.Options, error) {
	levels, err := risk.NewLevelTable(c.Risk.Levels)
	if err != nil {
		return assessment.Options{}, eris.Wrap(err, "config: risk.levels")
	}
	return assessment.Options{
		Catalog:        cat,
		Estimator:      c.Risk.Bootstrap,
		Levels:         levels,
		DurationLimitS: c.Risk.DurationLimitS,
		Log:            log,
	}, nil
}
