package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      Server      `yaml:"server" json:"server"`
	Data        Data        `yaml:"data" json:"data"`
	Log         Log         `yaml:"log" json:"log"`
	Scheduler   Scheduler   `yaml:"scheduler" json:"scheduler"`
	Aggregation Aggregation `yaml:"aggregation" json:"aggregation"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Data struct {
	// SQLiteDSN is the snapshot database location. Empty means in-memory
	// stores only, nothing survives a restart.
	SQLiteDSN string `yaml:"sqlite_dsn" json:"sqlite_dsn"`
}

type Log struct {
	Level       string `yaml:"level" json:"level"`
	Environment string `yaml:"environment" json:"environment"`
	// File enables rotated file output alongside stderr when set.
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

type Scheduler struct {
	HeartbeatEnabled bool `yaml:"heartbeat_enabled" json:"heartbeat_enabled"`
	// HeartbeatTime is the daily trigger in "HH:MM" local time.
	HeartbeatTime string `yaml:"heartbeat_time" json:"heartbeat_time"`
}

type Aggregation struct {
	SettleWindowMS int `yaml:"settle_window_ms" json:"settle_window_ms"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Environment == "" {
		c.Log.Environment = "dev"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 14
	}
	if c.Scheduler.HeartbeatTime == "" {
		c.Scheduler.HeartbeatTime = "00:05"
	}
	if c.Aggregation.SettleWindowMS == 0 {
		c.Aggregation.SettleWindowMS = 50
	}
}

func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

// Load reads a yaml config file, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}
