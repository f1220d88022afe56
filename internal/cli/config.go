package cli

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/domain"
	"github.com/upfyn/upfyn-agents/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage upfyn configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective configuration after merging the global
and project configuration files over the built-in defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, "[Loaded from]")
			printConfigSource(w, out.GlobalConfig)
			printConfigSource(w, out.ProjectConfig)
			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, out.Settings)
		},
	}
	return cmd
}

func printConfigSource(w io.Writer, info domain.ConfigInfo) {
	if info.Exists {
		_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
		return
	}
	_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
}

// effectiveConfig mirrors domain.Settings with the file keys.
type effectiveConfig struct {
	DefaultAgent string             `toml:"default_agent"`
	BaseBranch   string             `toml:"base_branch"`
	GithubURL    string             `toml:"github_url,omitempty"`
	InitScript   string             `toml:"init_script,omitempty"`
	CopyFiles    []string           `toml:"copy_files,omitempty"`
	Log          domain.LogConfig   `toml:"log"`
	Theme        domain.ThemeConfig `toml:"theme"`
}

// formatEffectiveConfig writes the merged settings as TOML.
func formatEffectiveConfig(w io.Writer, s *domain.Settings) error {
	cfg := effectiveConfig{
		DefaultAgent: s.DefaultAgent,
		BaseBranch:   s.BaseBranch,
		GithubURL:    s.GithubURL,
		InitScript:   s.InitScript,
		CopyFiles:    s.CopyFiles,
		Log:          domain.LogConfig{Level: s.LogLevel},
		Theme:        s.Theme,
	}
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate configuration file template",
		Long: `Generate a configuration file.

By default, creates the project configuration file at .upfyn/config.toml
with every key commented out. With --global, writes the built-in defaults
to the global configuration file.

Error conditions:
- Target file already exists: error`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{Global: global})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Generate global configuration")

	return cmd
}
