package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	filter string
}

// SetFilter sets the filter (for testing).
func (c *EditCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return nil }
func (c *EditCmd) Synopsis() string   { return "Change the text of a task" }
func (c *EditCmd) Usage() string      { return "morotasks edit [--filter <f>] <n> <text...>" }
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		if len(args) == 0 {
			fmt.Fprintf(errOut, "error: %v\n", ErrTaskRefRequired)
		} else {
			fmt.Fprintln(errOut, "error: task text required")
		}
		return exitcode.UserError
	}

	st, task, code := resolveTask(ctx, cfg, svc, c.filter, args, errOut)
	if st == nil {
		return code
	}

	task.Text = strings.Join(args[1:], " ")
	return reportMutation(cfg, st.UpdateTask(ctx, task), out, errOut)
}
