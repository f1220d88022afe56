package cli

import (
	"errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// errNotInteractive is returned when a question needs an answer but stdin is not a terminal.
var errNotInteractive = errors.New("stdin is not a terminal; pass the answer as a flag")

// prompter asks the questions of the lifecycle commands.
type prompter interface {
	// Confirm asks a yes/no question.
	Confirm(title, description string) (bool, error)

	// PRDetails lets the user edit the pull request title and body.
	PRDetails(title, body string) (string, string, error)
}

// newPrompter is a variable so tests can answer questions.
var newPrompter = func() prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return noPrompter{}
	}
	return huhPrompter{}
}

type huhPrompter struct{}

func (huhPrompter) Confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

func (huhPrompter) PRDetails(title, body string) (string, string, error) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("PR title").
				Value(&title).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("PR body").
				Value(&body),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return title, body, nil
}

// noPrompter refuses every question.
type noPrompter struct{}

func (noPrompter) Confirm(string, string) (bool, error) { return false, errNotInteractive }

func (noPrompter) PRDetails(string, string) (string, string, error) {
	return "", "", errNotInteractive
}
