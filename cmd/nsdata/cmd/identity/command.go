// Package identity implements the clean and map commands, which reconcile
// National Society names, countries and codes with the registry.
package identity

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/internal/cmd/cmdutil"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
)

// Pair is one input value and its reconciled form.
type Pair struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}

// NewCleanCommand creates the clean command with app dependencies.
func NewCleanCommand(app appcontext.Interface) *cobra.Command {
	var (
		dimension string
		onUnknown string
	)

	cmd := &cobra.Command{
		Use:     "clean [value...]",
		GroupID: "identity",
		Short:   "Canonicalise National Society names or countries",
		Long: `Clean replaces known spellings of National Society names or countries
with their canonical registry form. Values come from the arguments, or one
per line from stdin.`,
		Example: `  nsdata clean "Kenya RC" "Afghan Red Crescent"
  nsdata clean --dimension country "Türkiye" < countries.txt
  nsdata clean --on-unknown raise "Ruritania Red Cross"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := identity.ParseDimension(dimension)
			if err != nil {
				return err
			}
			policy, err := identity.ParsePolicy(onUnknown)
			if err != nil {
				return err
			}
			values, err := inputValues(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}

			cleaned, err := client.Clean(values, dim, policy)
			if err != nil {
				return err
			}
			return render(cmd, app.OutputFormat(), values, cleaned)
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "name", "What the values are: name or country")
	cmd.Flags().StringVar(&onUnknown, "on-unknown", "warn", "Unknown values: raise, warn or ignore")

	return cmd
}

// NewMapCommand creates the map command with app dependencies.
func NewMapCommand(app appcontext.Interface) *cobra.Command {
	var (
		from      string
		to        string
		onUnknown string
	)

	cmd := &cobra.Command{
		Use:     "map [value...]",
		GroupID: "identity",
		Short:   "Translate values between registry dimensions",
		Long: `Map translates values from one registry dimension to another, for
example ISO3 codes to National Society names. Dimensions are name, country,
iso3, iso2, region and id. Values come from the arguments, or one per line
from stdin.`,
		Example: `  nsdata map --from iso3 --to name KEN AFG
  nsdata map --from name --to id "Kenya Red Cross Society"
  nsdata map --from country --to iso3 < countries.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDim, err := identity.ParseDimension(from)
			if err != nil {
				return err
			}
			toDim, err := identity.ParseDimension(to)
			if err != nil {
				return err
			}
			policy, err := identity.ParsePolicy(onUnknown)
			if err != nil {
				return err
			}
			values, err := inputValues(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}

			mapped, err := client.Map(values, fromDim, toDim, policy)
			if err != nil {
				return err
			}
			return render(cmd, app.OutputFormat(), values, mapped)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Dimension of the input values")
	cmd.Flags().StringVar(&to, "to", "name", "Dimension to map to")
	cmd.Flags().StringVar(&onUnknown, "on-unknown", "warn", "Unknown values: raise, warn or ignore")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}

// inputValues returns args, or the non-blank lines of in when there are none.
func inputValues(in io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var values []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", "stdin", err)
	}
	if len(values) == 0 {
		return nil, errors.NewValidationError("values", "", "no values given as arguments or on stdin")
	}
	return values, nil
}

func render(cmd *cobra.Command, format string, in, out []string) error {
	pairs := make([]Pair, len(in))
	rows := make([][]string, len(in))
	for i := range in {
		pairs[i] = Pair{Input: in[i], Output: out[i]}
		rows[i] = []string{in[i], out[i]}
	}
	data := output.Data{Headers: []string{"Input", "Output"}, Rows: rows}
	return cmdutil.Render(cmd.OutOrStdout(), format, data, pairs)
}
