package config

import (
	"os"
	"path/filepath"
	"strings"
)

const EnvConfigDir = "LOXTERM_CONFIG_DIR"

// Dir resolves the directory holding settings and run history.
func Dir() string {
	if dir := strings.TrimSpace(os.Getenv(EnvConfigDir)); dir != "" {
		return dir
	}
	if base, err := os.UserConfigDir(); err == nil && base != "" {
		return filepath.Join(base, "loxterm")
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".loxterm")
	}
	return ".loxterm"
}

func HistoryPath() string {
	return filepath.Join(Dir(), "history.db")
}

// ThemeDir holds user theme files.
func ThemeDir() string {
	return filepath.Join(Dir(), "themes")
}
