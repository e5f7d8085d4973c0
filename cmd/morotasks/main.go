// Package main is the entry point for the morotasks CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hfnukal/morotasks/internal/cli"
	"github.com/hfnukal/morotasks/internal/commands"
)

func main() {
	// Cancel on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, cli.NewService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
