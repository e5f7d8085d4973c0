package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/service"
	"github.com/hfnukal/morotasks/internal/store"
	"github.com/hfnukal/morotasks/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the interactive view.
type UICmd struct{}

func (c *UICmd) Name() string       { return "ui" }
func (c *UICmd) Aliases() []string  { return []string{"tui"} }
func (c *UICmd) Synopsis() string   { return "Open the interactive task view" }
func (c *UICmd) Usage() string      { return "morotasks ui" }
func (c *UICmd) NeedsBackend() bool { return true }
func (c *UICmd) OwnsTerminal() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st := newStore(cfg, svc, store.ScopeAll)
	if err := tui.Run(ctx, st, cfg.Logger); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
