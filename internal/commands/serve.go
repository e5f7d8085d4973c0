package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hfnukal/morotasks/internal/config"
	"github.com/hfnukal/morotasks/internal/exitcode"
	"github.com/hfnukal/morotasks/internal/server"
	"github.com/hfnukal/morotasks/internal/service"
)

const (
	// DefaultServeAddr matches the default API URL.
	DefaultServeAddr = "localhost:8080"

	shutdownTimeout = 5 * time.Second
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the in-memory task API.
type ServeCmd struct {
	addr string
}

// SetAddr sets the listen address (for testing).
func (c *ServeCmd) SetAddr(addr string) {
	c.addr = addr
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Run an in-memory task API server" }
func (c *ServeCmd) Usage() string      { return "morotasks serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsBackend() bool { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", DefaultServeAddr, "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = DefaultServeAddr
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: could not listen on %s: %v\n", addr, err)
		return exitcode.UserError
	}

	srv := &http.Server{
		Handler:           server.New(server.NewMemoryRepo(), cfg.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	if !cfg.Quiet {
		fmt.Fprintf(out, "listening on http://%s\n", listener.Addr())
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "error: server: %v\n", err)
			return exitcode.BackendError
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(errOut, "error: shutdown: %v\n", err)
			return exitcode.BackendError
		}
	}
	return exitcode.Success
}
