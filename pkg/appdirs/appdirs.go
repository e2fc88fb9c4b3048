package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "vpnadm"

// Dirs holds the per-user locations vpnadm keeps its own state in.
// The client store directory is not one of them; it comes from config.
type Dirs struct {
	DataPath   string
	ConfigPath string
}

// New resolves XDG-compliant paths
func New() (*Dirs, error) {
	dataPath, dataErr := getDataRoot()
	configPath, configErr := getConfigPath()
	if dataErr != nil {
		return nil, fmt.Errorf("failed to determine data directory: %w", dataErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return &Dirs{
		DataPath:   dataPath,
		ConfigPath: configPath,
	}, nil
}

// getDataRoot follows the XDG Base Directory specification on Unix and uses AppData on Windows
func getDataRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// Initialize creates the data directory if it doesn't exist
func (d *Dirs) Initialize() error {
	if err := os.MkdirAll(d.DataPath, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", d.DataPath, err)
	}
	return nil
}

// Exists checks if the data directory has been created
func (d *Dirs) Exists() bool {
	info, err := os.Stat(d.DataPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// JournalPath returns the path of the operation journal
func (d *Dirs) JournalPath() string {
	return filepath.Join(d.DataPath, "journal.db")
}
