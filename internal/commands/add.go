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
	"github.com/hfnukal/morotasks/internal/store"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "morotasks add <text...>" }
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	// Adding needs no prior load.
	st := newStore(cfg, svc, store.ScopeAll)
	_, err := st.AddText(ctx, text)
	return reportMutation(cfg, err, out, errOut)
}
