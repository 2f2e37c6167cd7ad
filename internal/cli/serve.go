package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gustavofonseca/oai-pmh/internal/config"
	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/formats"
	"github.com/gustavofonseca/oai-pmh/internal/httpd"
	"github.com/gustavofonseca/oai-pmh/internal/repository"
	"github.com/gustavofonseca/oai-pmh/internal/sets"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the OAI-PMH server",
		Long: `Start the OAI-PMH server.

The server loads the configuration file, opens the SQLite store
(creating it if it doesn't exist), and serves protocol requests over
HTTP until interrupted.

Example:
  oaipmh serve --config ./oaipmh.yaml
  oaipmh serve --config /etc/oaipmh.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(rootOpts, cmd)
		},
	}
	return cmd
}

func runServer(opts *RootOptions, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	slog.Info("loading configuration", "path", opts.Config)
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	slog.Info("opening store", "path", cfg.Store.Path)
	ds, err := datastore.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := ds.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()
	slog.Info("store ready")

	repo := repository.New(
		cfg.RepositoryMeta(),
		ds,
		sets.New(ds, cfg.StaticSets()),
		formats.DefaultRegistry(),
		repository.WithPageLength(cfg.Lists.PageLength),
		repository.WithLogger(slog.Default()),
	)

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("server starting", "addr", cfg.HTTP.Listen, "base_url", cfg.Repository.BaseURL)
	fmt.Fprintln(cmd.OutOrStdout(), "Server started. Press Ctrl-C to stop.")

	srv := httpd.NewServer(cfg.HTTP.Listen, repo, slog.Default())
	if err := srv.Run(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
