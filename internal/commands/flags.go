package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/stride/internal/core/activity"
	"github.com/hay-kot/stride/internal/core/blob"
	"github.com/hay-kot/stride/internal/core/config"
	"github.com/hay-kot/stride/internal/core/validate"
	"github.com/hay-kot/stride/internal/tracker"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Blobs is the opened blob store backing Service
	Blobs blob.Store

	// Service is restored from Blobs in the Before hook
	Service *tracker.Service

	// LoadResult records how the Before hook's restore went
	LoadResult tracker.LoadResult
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "stride", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "stride")
}

// parseLocation parses "lat,lng".
func parseLocation(s string) (activity.Location, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return activity.Location{}, fmt.Errorf("location %q must be lat,lng", s)
	}
	return activity.NewLocation(validate.ParseNumber(lat), validate.ParseNumber(lng))
}
