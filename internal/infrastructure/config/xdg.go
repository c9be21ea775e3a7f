package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "webbridge"
	configFileName = "config.toml"
	schemaFileName = "config.schema.json"
	journalName    = "journal.sqlite"
)

// XDGDirs holds the XDG Base Directory paths for the application.
type XDGDirs struct {
	ConfigHome string
	DataHome   string
	StateHome  string
}

// GetXDGDirs returns the XDG Base Directory paths for webbridge:
// - $XDG_CONFIG_HOME/webbridge (default: ~/.config/webbridge)
// - $XDG_DATA_HOME/webbridge (default: ~/.local/share/webbridge)
// - $XDG_STATE_HOME/webbridge (default: ~/.local/state/webbridge)
func GetXDGDirs() (*XDGDirs, error) {
	// Development mode: keep everything under .dev in the working directory
	if os.Getenv("ENV") == "dev" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		devDir := filepath.Join(cwd, ".dev", appName)
		return &XDGDirs{ConfigHome: devDir, DataHome: devDir, StateHome: devDir}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return &XDGDirs{
		ConfigHome: filepath.Join(xdgBase("XDG_CONFIG_HOME", homeDir, ".config"), appName),
		DataHome:   filepath.Join(xdgBase("XDG_DATA_HOME", homeDir, ".local", "share"), appName),
		StateHome:  filepath.Join(xdgBase("XDG_STATE_HOME", homeDir, ".local", "state"), appName),
	}, nil
}

func xdgBase(env, home string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// GetConfigDir returns the XDG config directory.
func GetConfigDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetDataDir returns the XDG data directory.
func GetDataDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return dirs.DataHome, nil
}

// GetLogDir returns the log directory under XDG_STATE_HOME.
func GetLogDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.StateHome, "logs"), nil
}

// GetConfigFile returns the path of the main configuration file.
func GetConfigFile() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetJournalFile returns the default call journal database path.
func GetJournalFile() (string, error) {
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, journalName), nil
}

// EnsureDirectories creates the XDG directories if missing.
func EnsureDirectories() error {
	dirs, err := GetXDGDirs()
	if err != nil {
		return err
	}
	for _, dir := range []string{dirs.ConfigHome, dirs.DataHome, dirs.StateHome} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
