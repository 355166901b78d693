package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercalc/powercalc/engine/risk"
)

func TestLoadConfig_NoFile_UsesDefaults(t *testing.T) {
	// GIVEN a working directory without powercalc.yaml
	chdir(t, t.TempDir())

	// WHEN the config is loaded without an explicit path
	cfg, err := LoadConfig("")

	// THEN every default is applied
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "powercalc.db", cfg.Store.Path)
	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10.0, cfg.Server.RateLimit)
	assert.Equal(t, 20, cfg.Server.Burst)
	assert.Equal(t, risk.DefaultDurationLimitS, cfg.Risk.DurationLimitS)
	assert.Equal(t, risk.DefaultEstimatorConfig().BootstrapDraws, cfg.Risk.Bootstrap.BootstrapDraws)
	assert.Equal(t, risk.DefaultEstimatorConfig().Seed, cfg.Risk.Bootstrap.Seed)
	assert.Equal(t, risk.DefaultLevelThresholds(), cfg.Risk.Levels)
}

func TestLoadConfig_FileAndEnvironment(t *testing.T) {
	// GIVEN a config file overriding the store and bootstrap
	dir := t.TempDir()
	path := filepath.Join(dir, "powercalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: info
store:
  path: /var/lib/powercalc/history.db
risk:
  duration_limit_s: 8
  bootstrap:
    draws: 50
    seed: 11
    skip: true
  levels:
    very_high: 90
`), 0o644))

	// AND an environment variable overriding the log level
	t.Setenv("POWERCALC_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// THEN the environment wins over the file and the file over the defaults
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/lib/powercalc/history.db", cfg.Store.Path)
	assert.Equal(t, 8.0, cfg.Risk.DurationLimitS)
	assert.Equal(t, 50, cfg.Risk.Bootstrap.BootstrapDraws)
	assert.Equal(t, risk.SeedKey(11), cfg.Risk.Bootstrap.Seed)
	assert.True(t, cfg.Risk.Bootstrap.SkipBootstrap)
	assert.Equal(t, 90.0, cfg.Risk.Levels.VeryHigh)
	assert.Equal(t, 60.0, cfg.Risk.Levels.High, "unset keys keep their default")
}

func TestLoadConfig_ExplicitMissingFile_Fails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestAppConfig_AssessorOptions_RejectsUnorderedLevels(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	// GIVEN thresholds that are not strictly decreasing
	cfg.Risk.Levels.High = 85

	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	_, err = cfg.AssessorOptions(cat, nil)
	assert.Error(t, err)
}

func TestAppConfig_LoadCatalog(t *testing.T) {
	cfg := &AppConfig{}

	// WHEN no catalog path is set THEN the embedded catalog is used
	cat, err := cfg.LoadCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Version)

	// WHEN the path does not exist THEN loading fails
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadCatalog()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
