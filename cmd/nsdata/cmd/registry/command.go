// Package registry implements the registry command, which lists the
// canonical National Society registry.
package registry

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/appcontext"
	"github.com/ifrc-nsd/nsdata/internal/cmd/cmdutil"
	"github.com/ifrc-nsd/nsdata/internal/matcher"
	"github.com/ifrc-nsd/nsdata/internal/output"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
)

// NewCommand creates the registry command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		region  string
		search  string
		details bool
	)

	cmd := &cobra.Command{
		Use:     "registry [name]",
		GroupID: "identity",
		Aliases: []string{"ns", "societies"},
		Short:   "List National Societies in the registry",
		Long: `Registry lists the canonical National Society registry: each society's
name, country, ISO3 code, region and National Society ID. Given a name or
known alias it shows that society.`,
		Example: `  nsdata registry --region Africa
  nsdata registry --search crescent --details
  nsdata registry --search "*red cross society" --region Africa
  nsdata registry "Kenya Red Cross"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			reg, err := client.Registry()
			if err != nil {
				return err
			}

			records := reg.Records()
			if len(args) == 1 {
				names, err := client.Clean(args, identity.Name, identity.Ignore)
				if err != nil {
					return err
				}
				rec, ok := reg.Lookup(names[0])
				if !ok {
					return errors.NewNotFoundError("National Society", args[0])
				}
				records, details = []registry.EntityRecord{rec}, true
			} else if records, err = filter(records, region, search); err != nil {
				return err
			}

			return cmdutil.Render(cmd.OutOrStdout(), app.OutputFormat(), output.RegistryData(records, details), records)
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Only societies in this region")
	cmd.Flags().StringVar(&search, "search", "", "Only societies whose name or country contains this text, or matches this glob or regex")
	cmd.Flags().BoolVar(&details, "details", false, "Show ISO2 and alternative names")

	return cmd
}

// filter keeps records in region whose name, country or aliases match
// search. A glob or regex search must match; plain text need only be
// contained. Both ignore case.
func filter(records []registry.EntityRecord, region, search string) ([]registry.EntityRecord, error) {
	search = strings.TrimSpace(search)
	region = strings.TrimSpace(region)

	match := func(s string) bool { return strings.Contains(strings.ToLower(s), strings.ToLower(search)) }
	if matcher.IsPattern(search) {
		m, err := matcher.New(matcher.Auto, search)
		if err != nil {
			return nil, errors.NewValidationError("search", search, err.Error())
		}
		match = m.Match
	}

	var out []registry.EntityRecord
	for _, r := range records {
		if region != "" && !strings.EqualFold(r.Region, region) {
			continue
		}
		if search != "" && !anyMatch(r, match) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func anyMatch(r registry.EntityRecord, match func(string) bool) bool {
	candidates := append([]string{r.Name, r.Country}, r.AlternateNames...)
	candidates = append(candidates, r.AlternateCountryNames...)
	for _, c := range candidates {
		if match(c) {
			return true
		}
	}
	return false
}
