package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "funnel"

// Paths locates everything funnel keeps on disk. Config holds settings,
// funnel definitions and the credential store; Data holds logs and exports.
type Paths struct {
	Config string
	Data   string
}

// DefaultPaths resolves the platform directories:
//
//	Unix:    $XDG_CONFIG_HOME/funnel (~/.config/funnel) and
//	         $XDG_DATA_HOME/funnel (~/.local/share/funnel)
//	Windows: %APPDATA%\funnel and %LOCALAPPDATA%\funnel
func DefaultPaths() (Paths, error) {
	cfg, err := baseDir("APPDATA", "Roaming", "XDG_CONFIG_HOME", ".config")
	if err != nil {
		return Paths{}, err
	}
	data, err := baseDir("LOCALAPPDATA", "Local", "XDG_DATA_HOME", ".local/share")
	if err != nil {
		return Paths{}, err
	}
	return Paths{Config: filepath.Join(cfg, appName), Data: filepath.Join(data, appName)}, nil
}

// baseDir picks the per-user base directory from winEnv or xdgEnv, falling
// back to the conventional location under the home directory.
func baseDir(winEnv, winDir, xdgEnv, xdgDir string) (string, error) {
	if runtime.GOOS == "windows" {
		if v := os.Getenv(winEnv); v != "" {
			return v, nil
		}
		return filepath.Join(os.Getenv("USERPROFILE"), "AppData", winDir), nil
	}
	if v := os.Getenv(xdgEnv); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(xdgDir)), nil
}

// ConfigFile is the default config.toml.
func (p Paths) ConfigFile() string { return filepath.Join(p.Config, "config.toml") }

// Definitions is the directory of named funnel definitions.
func (p Paths) Definitions() string { return filepath.Join(p.Config, "funnels") }

// Credentials is the encrypted credential store.
func (p Paths) Credentials() string { return filepath.Join(p.Config, "credentials.enc") }

// LogFile receives logs while the terminal view owns the screen.
func (p Paths) LogFile() string { return filepath.Join(p.Data, "funnel.log") }

// Exports is where the terminal view writes exported charts.
func (p Paths) Exports() string { return filepath.Join(p.Data, "exports") }

// Ensure creates the config, definitions and data directories. Exports are
// created on first export.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.Config, p.Definitions(), p.Data} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
