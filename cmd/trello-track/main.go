// Package main is the entry point for the trello-track CLI.
package main

import (
	"context"
	"os"

	"trello-track/internal/backend/trello"
	"trello-track/internal/cli"
	"trello-track/internal/config"
	"trello-track/internal/service"
)

func main() {
	// Signals are handled while the wrapped command runs, so the context
	// is never cancelled: the final board update must always go out.
	ctx := context.Background()

	// Create service factory
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		return trello.New(ctx, cfg)
	}

	// Run and exit with code
	code := cli.NewDispatcher(factory).Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
