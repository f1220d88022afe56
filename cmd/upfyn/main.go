// Package main is the entry point for the upfyn CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/upfyn/upfyn-agents/internal/app"
	"github.com/upfyn/upfyn-agents/internal/cli"
	"github.com/upfyn/upfyn-agents/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	container, err := app.New(cwd)
	if err != nil {
		// help and version work outside a repository
		if errors.Is(err, domain.ErrNotGitRepository) && canRunWithoutGit(args) {
			root := cli.NewRootCommand(nil, version)
			root.SetArgs(args)
			return root.Execute()
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if cerr := container.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, "close:", cerr)
		}
	}()

	root := cli.NewRootCommand(container, version)
	root.SetArgs(args)
	return root.Execute()
}

func canRunWithoutGit(args []string) bool {
	if len(args) > 0 && args[0] == "help" {
		return true
	}
	for _, arg := range args {
		switch arg {
		case "--version", "--help", "-h":
			return true
		}
	}
	return false
}
