package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/upfyn/upfyn-agents/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager inspects and creates configuration files.
type Manager struct {
	configDir string
	repoRoot  string
}

// NewManager creates a new Manager.
func NewManager(configDir, repoRoot string) *Manager {
	return &Manager{configDir: configDir, repoRoot: repoRoot}
}

// GlobalConfigInfo returns information about the global config file.
func (m *Manager) GlobalConfigInfo() domain.ConfigInfo {
	return configInfo(domain.GlobalConfigPath(m.configDir))
}

// ProjectConfigInfo returns information about the project config file.
func (m *Manager) ProjectConfigInfo() domain.ConfigInfo {
	return configInfo(domain.ProjectConfigPath(m.repoRoot))
}

// InitProjectConfig writes the commented project template.
func (m *Manager) InitProjectConfig() (string, error) {
	path := domain.ProjectConfigPath(m.repoRoot)
	return path, initFile(path, projectTemplate)
}

// InitGlobalConfig writes the global config with default values.
func (m *Manager) InitGlobalConfig() (string, error) {
	path := domain.GlobalConfigPath(m.configDir)
	data, err := toml.Marshal(domain.NewDefaultConfig())
	if err != nil {
		return "", fmt.Errorf("encode defaults: %w", err)
	}
	return path, initFile(path, globalHeader+string(data))
}

func configInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path) //nolint:gosec // known config locations
	if err != nil {
		return domain.ConfigInfo{Path: path}
	}
	return domain.ConfigInfo{Path: path, Content: string(content), Exists: true}
}

func initFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

const globalHeader = `# upfyn-agents global configuration
# Project files (.upfyn/config.toml) override default_agent and base_branch.

`

const projectTemplate = `# upfyn-agents project configuration
# Values left empty fall back to the global config.

# Agent used for new tasks (claude, aider, codex, gh-copilot, opencode, cline, q)
# default_agent = "claude"

# Branch that task diffs are compared against
# base_branch = "main"

# Repository web URL; detected from the origin remote when empty
# github_url = "https://github.com/org/repo"

# Comma-separated files copied from the repository root into each new worktree
# copy_files = ".env,.env.local"

# Command run inside each new worktree after the files are copied
# init_script = "npm install"
`
