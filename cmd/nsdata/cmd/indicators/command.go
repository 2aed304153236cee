// Package indicators implements the indicators command, which prints the
// merged indicator log.
package indicators

import (
	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/internal/cmd/cmdutil"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
)

// NewCommand creates the indicators command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "indicators",
		GroupID: "core",
		Aliases: []string{"log"},
		Short:   "Collect indicator datasets into one indicator log",
		Long: `Indicators runs every selected dataset in indicator format and merges
them into one log with the columns National Society name, Country, ISO3,
Region, Indicator, Value, Year, Description, URL and Dataset.

Use --kind to keep only numeric (quantitative) or text (qualitative) values.`,
		Example: `  nsdata indicators --latest -o csv
  nsdata indicators --kind quantitative --iso3 KEN
  nsdata indicators -d "INFORM Risk" -d "UNDP Human Development"`,
		Args: cobra.NoArgs,
	}

	reqFlags := cmdutil.AddRequestFlags(cmd)
	cmd.Flags().StringVar(&kind, "kind", "any", "Value kind: any, quantitative or qualitative")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		valueKind, err := cmdutil.ParseValueKind(kind)
		if err != nil {
			return err
		}
		client, err := app.Client()
		if err != nil {
			return err
		}
		req, err := reqFlags.Request(client.Catalog().Names())
		if err != nil {
			return err
		}

		log, err := client.GetIndicatorsData(cmd.Context(), req, collector.WithValueKind(valueKind))
		if log != nil {
			cmdutil.PrintSkipped(cmd.ErrOrStderr(), log.Skipped)
		}
		if err != nil {
			return err
		}
		app.Logger().Info().
			Str("run_id", log.RunID).
			Int("rows", log.Data.Len()).
			Msg("Indicator log complete")

		return cmdutil.Render(cmd.OutOrStdout(), app.OutputFormat(), output.Table{Table: log.Data}, nil)
	}

	return cmd
}
