// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsBackend returns true if the command talks to the task backend.
	// Commands like help, version, serve, login, logout return false.
	NeedsBackend() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings, logger).
	// svc is nil if NeedsBackend() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// TerminalOwner is implemented by commands that take over the terminal.
// Their logs go to a file in the config directory instead of stderr.
type TerminalOwner interface {
	OwnsTerminal() bool
}
