// Package config resolves docman's application directories and settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "docman"

// GetDocmanDir resolves the base directory for docman's own storage. It checks
// DOCMAN_DIR first, then XDG paths, and finally falls back to the user's home
// directory.
func GetDocmanDir() string {
	if explicit := os.Getenv("DOCMAN_DIR"); explicit != "" {
		return explicit
	}

	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home := xdg.Home
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), appName)
			}
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	return filepath.Join(dataHome, appName)
}

// GetDBPath returns the absolute path to the SQLite database file.
func GetDBPath() string {
	return filepath.Join(GetDocmanDir(), "docman.db")
}

// GetSettingsPath returns the default location of the application settings file.
func GetSettingsPath() string {
	xdg.Reload()

	configHome := xdg.ConfigHome
	if configHome == "" {
		configHome = filepath.Join(GetDocmanDir(), "config")
		return filepath.Join(configHome, "config.yaml")
	}
	return filepath.Join(configHome, appName, "config.yaml")
}
