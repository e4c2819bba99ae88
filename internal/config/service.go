// Package config provides configuration helpers for go-targeting commands.
package config

import (
	"os"
	"strconv"
)

// Default service configuration.
const (
	DefaultPort    = "8090"
	DefaultDataDir = "data"
)

// Port returns the HTTP listen port from TARGETING_PORT.
// Falls back to DefaultPort if not set.
func Port() string {
	if port := os.Getenv("TARGETING_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// DataDir returns the snapshot output directory from TARGETING_DATA_DIR.
func DataDir() string {
	if dir := os.Getenv("TARGETING_DATA_DIR"); dir != "" {
		return dir
	}
	return DefaultDataDir
}

// LogLevel returns the log level from LOG_LEVEL ("debug", "info", "warn", "error").
func LogLevel() string {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		return level
	}
	return "info"
}

// EnhanceEnabled reports whether the auto contrast/brightness stage
// should run ahead of the overlay renderer (TARGETING_ENHANCE=1).
func EnhanceEnabled() bool {
	return os.Getenv("TARGETING_ENHANCE") == "1"
}

// SnapshotsEnabled reports whether event-triggered snapshot saving is on
// (TARGETING_SNAPSHOTS=1).
func SnapshotsEnabled() bool {
	return os.Getenv("TARGETING_SNAPSHOTS") == "1"
}

// Float returns a float64 from the named env var, or the fallback if the
// variable is unset or unparseable. Used for camera geometry overrides.
func Float(name string, fallback float64) float64 {
	s := os.Getenv(name)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

// Int returns an int from the named env var, or the fallback if the
// variable is unset or unparseable.
func Int(name string, fallback int) int {
	s := os.Getenv(name)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
