// Package datasets implements the datasets command, which lists the catalog.
package datasets

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/internal/cmd/cmdutil"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// NewCommand creates the datasets command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		where   []string
		details bool
	)

	cmd := &cobra.Command{
		Use:     "datasets [name]",
		GroupID: "core",
		Aliases: []string{"dataset", "catalog"},
		Short:   "List datasets in the catalog",
		Long: `Datasets lists the catalog of datasets nsdata can collect, with their
source, format and privacy. Given a dataset name it shows the dataset's
metadata and its indicator and column renames.`,
		Example: `  nsdata datasets                          # List all datasets
  nsdata datasets --where privacy=public   # Only public datasets
  nsdata datasets --where format=indicators --details
  nsdata datasets "GO Operations"          # Show one dataset`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				info, ok := client.Catalog().Lookup(args[0])
				if !ok {
					return errors.NewNotFoundError("dataset", args[0])
				}
				return showDataset(cmd, app.OutputFormat(), info)
			}

			predicate, err := cmdutil.ParseKeyValues(where)
			if err != nil {
				return err
			}
			infos, err := client.Datasets(predicate)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd.OutOrStdout(), app.OutputFormat(), output.CatalogData(infos, details), infos)
		},
	}

	cmd.Flags().StringArrayVar(&where, "where", nil, "Catalog metadata filter, e.g. 'source=IFRC GO' (repeatable)")
	cmd.Flags().BoolVar(&details, "details", false, "Show focal point, rename counts and link")

	return cmd
}

// showDataset prints a catalog entry. Structured formats get the entry as
// is; the others get its properties followed by its renames.
func showDataset(cmd *cobra.Command, format string, info catalog.Info) error {
	w := cmd.OutOrStdout()
	if err := cmdutil.Render(w, format, output.DatasetData(info), info); err != nil {
		return err
	}
	if cmdutil.Structured(format) {
		return nil
	}
	renames := output.RenamesData(info)
	if len(renames.Rows) == 0 {
		return nil
	}
	_, _ = fmt.Fprintln(w)
	return cmdutil.Render(w, format, renames, nil)
}
