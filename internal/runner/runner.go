package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// tailLines is how much captured output a quiet-mode failure carries.
const tailLines = 20

type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type Runner interface {
	Run(ctx context.Context, cmd Command, verbose bool) error
	RunElevated(ctx context.Context, cmd Command, verbose bool) error
}

type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

type Exec struct {
	elevate string
	logger  *log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func New(elevate string, logger *log.Logger) *Exec {
	return &Exec{
		elevate: elevate,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

func (e *Exec) WithStdio(stdin io.Reader, stdout, stderr io.Writer) *Exec {
	e.stdin = stdin
	e.stdout = stdout
	e.stderr = stderr
	return e
}

// Run executes cmd. Verbose runs stream through the terminal; quiet runs
// capture output and only surface it on failure.
func (e *Exec) Run(ctx context.Context, cmd Command, verbose bool) error {
	if cmd.Name == "" {
		return fmt.Errorf("no command provided")
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		absDir, err := filepath.Abs(cmd.Dir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for directory: %w", err)
		}
		c.Dir = absDir
	}

	// stdin stays attached in quiet mode so password prompts still work
	c.Stdin = e.stdin

	var out bytes.Buffer
	if verbose {
		c.Stdout = e.stdout
		c.Stderr = e.stderr
	} else {
		c.Stdout = &out
		c.Stderr = &out
	}

	e.logger.Debug("running command", "cmd", cmd.String(), "dir", c.Dir, "verbose", verbose)

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Command: cmd.String(),
			Code:    exitErr.ExitCode(),
			Output:  tail(out.String(), tailLines),
		}
	}

	return fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}

// RunElevated runs cmd through the configured privilege wrapper.
func (e *Exec) RunElevated(ctx context.Context, cmd Command, verbose bool) error {
	if e.elevate == "" {
		return e.Run(ctx, cmd, verbose)
	}

	return e.Run(ctx, Command{
		Name: e.elevate,
		Args: append([]string{cmd.Name}, cmd.Args...),
		Dir:  cmd.Dir,
	}, verbose)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
