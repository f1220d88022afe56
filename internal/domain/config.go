package domain

import (
	"path/filepath"
	"strings"
)

// ConfigFileName is the file name used for both global and project config.
const ConfigFileName = "config.toml"

// Config is the global configuration read from <configDir>/config.toml.
// Fields are ordered to minimize memory padding.
type Config struct {
	DefaultAgent string         `toml:"default_agent"`
	Worktree     WorktreeConfig `toml:"worktree"`
	Log          LogConfig      `toml:"log"`
	Theme        ThemeConfig    `toml:"theme"`
}

// WorktreeConfig holds the [worktree] section.
type WorktreeConfig struct {
	BaseBranch string `toml:"base_branch"` // Base branch for diffs
}

// LogConfig holds the [log] section.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// ThemeConfig holds the [theme] section consumed by the TUI.
type ThemeConfig struct {
	ColorSelected     string `toml:"color_selected"`
	ColorNormal       string `toml:"color_normal"`
	ColorDimmed       string `toml:"color_dimmed"`
	ColorText         string `toml:"color_text"`
	ColorAccent       string `toml:"color_accent"`
	ColorDescription  string `toml:"color_description"`
	ColorColumnHeader string `toml:"color_column_header"`
}

// ProjectConfig is read from <repoRoot>/.upfyn/config.toml.
// Empty values defer to the global config.
type ProjectConfig struct {
	DefaultAgent string `toml:"default_agent,omitempty"`
	BaseBranch   string `toml:"base_branch,omitempty"`
	GithubURL    string `toml:"github_url,omitempty"`
	CopyFiles    string `toml:"copy_files,omitempty"`  // Comma-separated list of files
	InitScript   string `toml:"init_script,omitempty"` // Run in the new worktree
}

// Settings is the merged view of global and project configuration.
type Settings struct {
	DefaultAgent string
	BaseBranch   string
	GithubURL    string
	InitScript   string
	LogLevel     string
	CopyFiles    []string
	Theme        ThemeConfig
}

// NewDefaultConfig returns the built-in global defaults.
func NewDefaultConfig() *Config {
	return &Config{
		DefaultAgent: DefaultAgentName,
		Worktree: WorktreeConfig{
			BaseBranch: "main",
		},
		Log: LogConfig{
			Level: "info",
		},
		Theme: DefaultTheme(),
	}
}

// DefaultTheme returns the default TUI palette.
func DefaultTheme() ThemeConfig {
	return ThemeConfig{
		ColorSelected:     "#ead49a",
		ColorNormal:       "#5cfff7",
		ColorDimmed:       "#9C9991",
		ColorText:         "#f2ece6",
		ColorAccent:       "#5cfff7",
		ColorDescription:  "#C4B0AC",
		ColorColumnHeader: "#a0d2fa",
	}
}

// Merge combines global and project configuration. Project values win when set.
// project may be nil.
func Merge(global *Config, project *ProjectConfig) *Settings {
	if global == nil {
		global = NewDefaultConfig()
	}
	s := &Settings{
		DefaultAgent: global.DefaultAgent,
		BaseBranch:   global.Worktree.BaseBranch,
		LogLevel:     global.Log.Level,
		Theme:        global.Theme,
	}
	if project == nil {
		return s
	}
	if project.DefaultAgent != "" {
		s.DefaultAgent = project.DefaultAgent
	}
	if project.BaseBranch != "" {
		s.BaseBranch = project.BaseBranch
	}
	s.GithubURL = project.GithubURL
	s.CopyFiles = SplitCopyFiles(project.CopyFiles)
	s.InitScript = strings.TrimSpace(project.InitScript)
	return s
}

// SplitCopyFiles splits a comma-separated file list, dropping blanks.
func SplitCopyFiles(list string) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// GlobalConfigPath returns <configDir>/config.toml.
func GlobalConfigPath(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// ConfigInfo describes a configuration file on disk.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}
