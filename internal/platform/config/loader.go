package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".dailymile"
	configType      = "yaml"
	envPrefix       = "DAILYMILE"
	envKeySeparator = "_"
)

// Load resolves configuration from defaults, an optional YAML file and
// DAILYMILE_* environment variables. When configPath is empty the file is
// searched in dataDir; a missing file is not an error.
func Load(dataDir, configPath string) (Config, error) {
	defaults, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	applyDefaults(v, defaults)
	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(dataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(cfg.DataDir, cfg.DBPath)
	}
	if cfg.SnapshotPath != "" && !filepath.IsAbs(cfg.SnapshotPath) {
		cfg.SnapshotPath = filepath.Join(cfg.DataDir, cfg.SnapshotPath)
	}
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(v *viper.Viper, d Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_path", "")
	v.SetDefault("snapshot_path", "")
	v.SetDefault("timezone", d.Timezone)

	v.SetDefault("goal.miles", d.Goal.Miles)

	v.SetDefault("streak.threshold", d.Streak.Threshold)
	v.SetDefault("streak.page_size", d.Streak.PageSize)

	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.staleness_window", d.Store.StalenessWindow)

	v.SetDefault("refresh.interval", d.Refresh.Interval)
	v.SetDefault("refresh.task_timeout", d.Refresh.TaskTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("dashboard.poll_interval", d.Dashboard.PollInterval)
}
