package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gustavofonseca/oai-pmh/internal/config"
	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/formats"
	"github.com/gustavofonseca/oai-pmh/internal/repository"
	"github.com/gustavofonseca/oai-pmh/internal/sets"
)

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Run one protocol request and print the response",
		Long: `Run a single protocol request against the local store and print the
XML response to stdout, without starting the HTTP server.

The query is the raw query string a harvester would send.

Example:
  oaipmh ask 'verb=Identify'
  oaipmh ask 'verb=ListRecords&metadataPrefix=oai_dc&from=2024-01-01'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runAsk(opts *RootOptions, rawQuery string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	ds, err := datastore.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer ds.Close()

	repo := repository.New(
		cfg.RepositoryMeta(),
		ds,
		sets.New(ds, cfg.StaticSets()),
		formats.DefaultRegistry(),
		repository.WithPageLength(cfg.Lists.PageLength),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body := repo.HandleRequest(ctx, rawQuery)
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}
