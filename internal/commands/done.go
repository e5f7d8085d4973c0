package commands

import (
	"context"
	"flag"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	filter string
}

// SetFilter sets the filter (for testing).
func (c *DoneCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "morotasks done [--filter <f>] <n>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, c.filter, true, args, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct {
	filter string
}

// SetFilter sets the filter (for testing).
func (c *UndoneCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *UndoneCmd) Name() string       { return "undone" }
func (c *UndoneCmd) Aliases() []string  { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string   { return "Mark a task not completed" }
func (c *UndoneCmd) Usage() string      { return "morotasks undone [--filter <f>] <n>" }
func (c *UndoneCmd) NeedsBackend() bool { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, svc, c.filter, false, args, out, errOut)
}

// runSetCompleted is the shared implementation for done and undone.
func runSetCompleted(ctx context.Context, cfg *config.Config, svc service.Service, filter string, completed bool, args []string, out, errOut io.Writer) int {
	st, task, code := resolveTask(ctx, cfg, svc, filter, args, errOut)
	if st == nil {
		return code
	}
	return reportMutation(cfg, st.SetCompleted(ctx, task.ID, completed), out, errOut)
}
