package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "morotasks help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  morotasks                                      List all tasks
  morotasks list [common flags] [--filter <f>]   List tasks (all, completed, incomplete)
  morotasks add [common flags] <text...>
  morotasks edit [common flags] [--filter <f>] <n> <text...>
  morotasks done [common flags] [--filter <f>] <n>
  morotasks undone [common flags] [--filter <f>] <n>
  morotasks rm [common flags] [--filter <f>] <n>
  morotasks done-all [common flags] [--filter <f>]
  morotasks clear [common flags]
  morotasks ui [common flags]
  morotasks serve [common flags] [--addr <host:port>]
  morotasks login [common flags]                 Google Tasks backend only
  morotasks logout [common flags]
  morotasks help
  morotasks version

Task numbers are positions in the list printed with the same --filter.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr (ui: to debug.log)

Environment:
  API_URL            Task API base URL (default http://localhost:8080)
  MOROTASKS_BACKEND  rest or googletasks
`
