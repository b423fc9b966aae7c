package main

import (
	"os"
	"path/filepath"
	"time"
)

// Config of the client, read from the environment and the flags.
type Config struct {
	BackendAddr     string        `env:"GROUPCHAT_ADDR,default=localhost:8080"`
	SessionFile     string        `env:"GROUPCHAT_SESSION_FILE"`
	LogFile         string        `env:"GROUPCHAT_LOG_FILE"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	Theme           string        `env:"GROUPCHAT_THEME,default=light"`
	RequestTimeout  time.Duration `env:"GROUPCHAT_REQUEST_TIMEOUT,default=10s"`
	RefreshRetry    time.Duration `env:"GROUPCHAT_REFRESH_RETRY,default=30s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
}

// withDefaults places the session and the log file in the user config directory.
func (c Config) withDefaults() (Config, error) {
	if c.SessionFile != "" && c.LogFile != "" {
		return c, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return c, err
	}
	if c.SessionFile == "" {
		c.SessionFile = filepath.Join(dir, "groupchat", "session.json")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "groupchat", "client.log")
	}
	return c, nil
}
