// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	configDir string // Global config directory (e.g., ~/.config/upfyn-agents)
	repoRoot  string // Repository root holding .upfyn/config.toml
}

// NewLoader creates a new Loader.
func NewLoader(configDir, repoRoot string) *Loader {
	return &Loader{
		configDir: configDir,
		repoRoot:  repoRoot,
	}
}

// DefaultConfigDir returns the per-user config directory:
// %APPDATA% on windows, ~/Library/Application Support on darwin,
// $XDG_CONFIG_HOME (default ~/.config) elsewhere.
func DefaultConfigDir() (string, error) {
	return configDirFor(runtime.GOOS, os.Getenv, os.UserHomeDir)
}

func configDirFor(goos string, getenv func(string) string, home func() (string, error)) (string, error) {
	switch goos {
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, domain.AppName), nil
		}
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(h, "AppData", "Roaming", domain.AppName), nil
	case "darwin":
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(h, "Library", "Application Support", domain.AppName), nil
	default:
		if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, domain.AppName), nil
		}
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(h, ".config", domain.AppName), nil
	}
}

// Load returns the merged settings: defaults <- global <- project.
func (l *Loader) Load() (*domain.Settings, error) {
	global, err := l.LoadGlobal()
	if err != nil {
		return nil, err
	}
	project, err := l.LoadProject()
	if err != nil {
		return nil, err
	}
	return domain.Merge(global, project), nil
}

// LoadGlobal returns the global configuration, or the defaults when the file is absent.
// Keys missing from the file keep their default values.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	cfg := domain.NewDefaultConfig()
	if l.configDir == "" {
		return cfg, nil
	}
	if err := decodeFile(domain.GlobalConfigPath(l.configDir), cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadProject returns the project configuration, or nil when the file is absent.
func (l *Loader) LoadProject() (*domain.ProjectConfig, error) {
	if l.repoRoot == "" {
		return nil, nil
	}
	var cfg domain.ProjectConfig
	if err := decodeFile(domain.ProjectConfigPath(l.repoRoot), &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// decodeFile decodes a TOML file into v, keeping values of v for absent keys.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // config path is derived from known locations
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
