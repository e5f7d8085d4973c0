package commands

import (
	"context"
	"flag"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	filter string
}

// SetFilter sets the filter (for testing).
func (c *RmCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "morotasks rm [--filter <f>] <n>" }
func (c *RmCmd) NeedsBackend() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st, task, code := resolveTask(ctx, cfg, svc, c.filter, args, errOut)
	if st == nil {
		return code
	}
	return reportMutation(cfg, st.DeleteTask(ctx, task.ID), out, errOut)
}
