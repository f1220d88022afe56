package domain

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
	// StdoutOnly keeps stderr out of a successful result, for output that is parsed.
	// On failure stderr is still appended so errors carry the diagnostics.
	StdoutOnly bool
}

// NewCommand creates an ExecCommand running program with args in dir.
func NewCommand(dir, program string, args ...string) *ExecCommand {
	return &ExecCommand{Program: program, Dir: dir, Args: args}
}
