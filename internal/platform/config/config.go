package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	DefaultGoalMiles         = 1.0
	DefaultStreakThreshold   = 0.95
	DefaultStreakPageSize    = 100
	DefaultTimezone          = "Local"
	DefaultBackend           = BackendFile
	DefaultStalenessWindow   = 5 * time.Minute
	DefaultRefreshInterval   = time.Minute
	DefaultTaskTimeout       = 20 * time.Second
	DefaultDashboardInterval = 500 * time.Millisecond
	DefaultLogLevel          = "info"
)

// Config is the resolved runtime configuration. Field tags use mapstructure for
// viper unmarshalling.
type Config struct {
	DataDir      string          `mapstructure:"data_dir"`
	DBPath       string          `mapstructure:"db_path"`
	SnapshotPath string          `mapstructure:"snapshot_path"`
	Timezone     string          `mapstructure:"timezone"`
	Goal         GoalConfig      `mapstructure:"goal"`
	Streak       StreakConfig    `mapstructure:"streak"`
	Store        StoreConfig     `mapstructure:"store"`
	Refresh      RefreshConfig   `mapstructure:"refresh"`
	Log          LogConfig       `mapstructure:"log"`
	Metrics      MetricsConfig   `mapstructure:"metrics"`
	Dashboard    DashboardConfig `mapstructure:"dashboard"`
}

type GoalConfig struct {
	Miles float64 `mapstructure:"miles"`
}

// StreakConfig holds the qualifying threshold, a product policy constant.
type StreakConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	PageSize  int     `mapstructure:"page_size"`
}

type StoreConfig struct {
	Backend         string        `mapstructure:"backend"`
	StalenessWindow time.Duration `mapstructure:"staleness_window"`
}

type RefreshConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type DashboardConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// New returns the defaults for dataDir without reading any file.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Config{
		DataDir:  dataDir,
		Timezone: DefaultTimezone,
		Goal:     GoalConfig{Miles: DefaultGoalMiles},
		Streak:   StreakConfig{Threshold: DefaultStreakThreshold, PageSize: DefaultStreakPageSize},
		Store:    StoreConfig{Backend: DefaultBackend, StalenessWindow: DefaultStalenessWindow},
		Refresh:  RefreshConfig{Interval: DefaultRefreshInterval, TaskTimeout: DefaultTaskTimeout},
		Log:      LogConfig{Level: DefaultLogLevel},
		Dashboard: DashboardConfig{
			PollInterval: DefaultDashboardInterval,
		},
	}
	cfg.resolvePaths()
	return cfg, nil
}

func (c *Config) resolvePaths() {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, ".dailymile", "dailymile.db")
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = filepath.Join(c.DataDir, ".dailymile", "progress.json")
	}
}

// Location resolves the configured timezone used for day keys.
func (c Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local":
		return time.Local, nil
	default:
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
		}
		return loc, nil
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data dir is required")
	}
	if c.Goal.Miles <= 0 {
		return fmt.Errorf("goal.miles must be positive, got %v", c.Goal.Miles)
	}
	if c.Streak.Threshold <= 0 {
		return fmt.Errorf("streak.threshold must be positive, got %v", c.Streak.Threshold)
	}
	if c.Streak.PageSize <= 0 {
		return fmt.Errorf("streak.page_size must be positive, got %d", c.Streak.PageSize)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be memory|file|sqlite, got %q", c.Store.Backend)
	}
	if c.Store.StalenessWindow <= 0 {
		return errors.New("store.staleness_window must be positive")
	}
	if c.Refresh.Interval <= 0 || c.Refresh.TaskTimeout <= 0 {
		return errors.New("refresh.interval and refresh.task_timeout must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
