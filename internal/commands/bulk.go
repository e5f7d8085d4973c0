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
	Register(&DoneAllCmd{})
	Register(&ClearCmd{})
}

// DoneAllCmd marks every task of the listed view completed.
type DoneAllCmd struct {
	filter string
}

// SetFilter sets the filter (for testing).
func (c *DoneAllCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *DoneAllCmd) Name() string       { return "done-all" }
func (c *DoneAllCmd) Aliases() []string  { return nil }
func (c *DoneAllCmd) Synopsis() string   { return "Mark every listed task completed" }
func (c *DoneAllCmd) Usage() string      { return "morotasks done-all [--filter <f>]" }
func (c *DoneAllCmd) NeedsBackend() bool { return true }

func (c *DoneAllCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *DoneAllCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	st, code := openStore(ctx, cfg, svc, c.filter, errOut)
	if st == nil {
		return code
	}
	return reportMutation(cfg, st.CompleteAll(ctx, st.State().Tasks), out, errOut)
}

// ClearCmd deletes every completed task.
type ClearCmd struct{}

func (c *ClearCmd) Name() string       { return "clear" }
func (c *ClearCmd) Aliases() []string  { return nil }
func (c *ClearCmd) Synopsis() string   { return "Delete every completed task" }
func (c *ClearCmd) Usage() string      { return "morotasks clear" }
func (c *ClearCmd) NeedsBackend() bool { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	st, code := openStore(ctx, cfg, svc, "completed", errOut)
	if st == nil {
		return code
	}
	return reportMutation(cfg, st.DeleteCompleted(ctx), out, errOut)
}
