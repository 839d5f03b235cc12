package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/test-directory-reconciler/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report output directory for review in a browser",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := cfgManager.GetConfig()
	server := api.NewServer(cfg.Reconciler.OutputDir, logger)
	return server.Start(ctx, cfg.Server.Host, cfg.Server.Port)
}
