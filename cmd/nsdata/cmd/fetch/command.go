// Package fetch implements the fetch command, which collects datasets.
package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/internal/cmd/cmdutil"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
)

// NewCommand creates the fetch command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		saveDir    string
		saveFormat string
	)

	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "core",
		Aliases: []string{"get", "collect"},
		Short:   "Collect datasets from their sources",
		Long: `Fetch pulls the selected datasets from their sources, normalises every
National Society to its canonical identity and prints one table per dataset.

Datasets that fail, or lack a required argument, are skipped and listed
on stderr. The command fails only when every selected dataset fails.`,
		Example: `  nsdata fetch -d "World Development Indicators" --latest
  nsdata fetch -d FDRS --arg FDRS:api_key=$IFRC_API_KEY --iso3 KEN,AFG
  nsdata fetch -d 'GO *' --ns "Kenya Red Cross Society"
  nsdata fetch -d OCAC --arg OCAC:filepath=ocac.xlsx -o csv
  nsdata fetch --where privacy=public --save-dir out/`,
		Args: cobra.NoArgs,
	}

	reqFlags := cmdutil.AddRequestFlags(cmd)
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "Also write one file per dataset into this directory")
	cmd.Flags().StringVar(&saveFormat, "save-format", "csv", "Format of saved files")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		logger := app.Logger()

		client, err := app.Client()
		if err != nil {
			return err
		}
		req, err := reqFlags.Request(client.Catalog().Names())
		if err != nil {
			return err
		}

		batch, err := client.GetData(cmd.Context(), req)
		if batch != nil {
			cmdutil.PrintSkipped(cmd.ErrOrStderr(), batch.Skipped)
		}
		if err != nil {
			return err
		}
		logger.Info().
			Str("run_id", batch.RunID).
			Int("datasets", len(batch.Results)).
			Int("skipped", len(batch.Skipped)).
			Dur("duration", batch.Duration).
			Msg("Collection complete")

		if saveDir != "" {
			format, err := output.ParseFormat(saveFormat)
			if err != nil {
				return err
			}
			paths, err := client.Save(batch, saveDir, format)
			if err != nil {
				return err
			}
			for _, p := range paths {
				logger.Info().Str("path", p).Msg("Saved")
			}
		}

		return printBatch(cmd, app.OutputFormat(), batch)
	}

	return cmd
}

// printBatch writes the results. Structured formats get one document
// holding every dataset; the others get a titled table per dataset.
func printBatch(cmd *cobra.Command, format string, batch *collector.Batch) error {
	w := cmd.OutOrStdout()
	if cmdutil.Structured(format) {
		named := make([]output.NamedTable, len(batch.Results))
		for i, res := range batch.Results {
			named[i] = output.NamedTable{Name: res.Name, Table: res.Data}
		}
		return cmdutil.Render(w, format, nil, named)
	}

	for i, res := range batch.Results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		if len(batch.Results) > 1 {
			_, _ = fmt.Fprintf(w, "# %s (%d rows)\n", res.Name, res.Data.Len())
		}
		if err := cmdutil.Render(w, format, output.Table{Table: res.Data}, nil); err != nil {
			return err
		}
	}
	return nil
}
