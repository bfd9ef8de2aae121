package config

import (
	"os"
	"strconv"
)

// applyEnv layers environment overrides on top of the file values.
// Useful for container deployments where the yaml is baked in.
func (c *Config) applyEnv() {
	if v := os.Getenv("SP_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SP_SQLITE_DSN"); v != "" {
		c.Data.SQLiteDSN = v
	}
	if v := os.Getenv("SP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SP_LOG_ENV"); v != "" {
		c.Log.Environment = v
	}
	if v := os.Getenv("SP_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("SP_HEARTBEAT_TIME"); v != "" {
		c.Scheduler.HeartbeatTime = v
	}
	if v := getEnvInt("SP_SETTLE_WINDOW_MS"); v > 0 {
		c.Aggregation.SettleWindowMS = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
