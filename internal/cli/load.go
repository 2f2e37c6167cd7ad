package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gustavofonseca/oai-pmh/internal/config"
	"github.com/gustavofonseca/oai-pmh/internal/datastore"
	"github.com/gustavofonseca/oai-pmh/internal/oai"
)

// loadDocument is the shape of an ingestion file.
type loadDocument struct {
	Journals  []datastore.Journal `yaml:"journals"`
	Resources []oai.Resource      `yaml:"resources"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <records-file>",
		Short: "Ingest records into the store",
		Long: `Ingest journals and resources from a YAML file into the store.

Existing records with the same identifier are replaced. Journals become
harvestable sets, speced by their lead ISSN.

Example:
  oaipmh load --config ./oaipmh.yaml ./records.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLoad(opts *RootOptions, recordsPath string, cmd *cobra.Command) error {
	setupLogging(opts.Verbose)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	raw, err := os.ReadFile(recordsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read records file", err)
	}
	var doc loadDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return WrapExitError(ExitCommandError, "failed to parse records file", err)
	}

	ds, err := datastore.Open(cfg.Store.Path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer func() {
		if closeErr := ds.Close(); closeErr != nil {
			slog.Error("error closing store", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, j := range doc.Journals {
		if err := ds.AddJournal(ctx, j); err != nil {
			return WrapExitError(ExitFailure,
				fmt.Sprintf("failed to store journal %q", j.LeadISSN), err)
		}
	}
	for _, res := range doc.Resources {
		if err := ds.Add(ctx, res); err != nil {
			return WrapExitError(ExitFailure,
				fmt.Sprintf("failed to store resource %q", res.RIdentifier), err)
		}
	}

	slog.Info("records loaded", "journals", len(doc.Journals), "resources", len(doc.Resources))
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d journals and %d resources.\n",
		len(doc.Journals), len(doc.Resources))
	return nil
}
