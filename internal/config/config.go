// Package config loads kiosk configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName     = "toolkiosk"
	EnvFileName = "config.env"
)

// Config holds everything the kiosk binary needs at startup.
type Config struct {
	// ListenAddr is the address the kiosk API listens on.
	ListenAddr string
	// PredictURL is the base URL of the external recognition service.
	PredictURL string
	// CompareURL is the base URL of the warehouse comparison service.
	// Optional: when empty, comparisons are computed locally.
	CompareURL string
	// DBPath is the SQLite database file for settings and the
	// return-transaction log.
	DBPath string
	// ToolkitID identifies the kit this station issues.
	ToolkitID int
}

// LoadEnvFile loads environment variables from the config file in the
// user's config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// FromEnv builds a Config from the environment. KIOSK_PREDICT_URL is the
// only required variable.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr: os.Getenv("KIOSK_LISTEN_ADDR"),
		PredictURL: os.Getenv("KIOSK_PREDICT_URL"),
		CompareURL: os.Getenv("KIOSK_COMPARE_URL"),
		DBPath:     os.Getenv("KIOSK_DB_PATH"),
		ToolkitID:  1,
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "toolkiosk.db"
	}
	if cfg.PredictURL == "" {
		return cfg, fmt.Errorf("KIOSK_PREDICT_URL is not set")
	}
	if v := os.Getenv("KIOSK_TOOLKIT_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 1 {
			return cfg, fmt.Errorf("KIOSK_TOOLKIT_ID must be a positive integer: %q", v)
		}
		cfg.ToolkitID = id
	}
	return cfg, nil
}
