package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Backend names for the durable key-value store.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

type Config struct {
	// HTTP server
	Port string

	// Persistence
	Backend    string
	DataDir    string
	SQLitePath string

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("OUTLAY_PORT", "8080"),
		Backend:    getEnv("OUTLAY_BACKEND", BackendFile),
		DataDir:    getEnv("OUTLAY_DATA_DIR", "./data"),
		SQLitePath: getEnv("OUTLAY_SQLITE_PATH", "./data/outlay.db"),
		LogLevel:   getEnv("OUTLAY_LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and returns an error listing every
// violation found.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case BackendFile:
		if c.DataDir == "" {
			problems = append(problems, "data directory cannot be empty when using the file backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite path cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLitePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					problems = append(problems, fmt.Sprintf("cannot create sqlite directory %q: %v", dir, err))
				}
			}
		}
	case BackendNone:
		// Legitimate no-op backend: nothing to check.
	default:
		problems = append(problems, fmt.Sprintf("invalid backend %q: must be one of [file sqlite none]", c.Backend))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
