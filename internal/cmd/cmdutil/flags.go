// Package cmdutil provides shared flags and output helpers for nsdata commands.
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ifrc-nsd/nsdata/internal/matcher"
	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
)

// RequestFlags holds the flags that build a collector request.
type RequestFlags struct {
	Datasets []string
	Latest   bool
	ISO3     []string
	Country  []string
	Names    []string
	Where    []string
	Args     []string
}

// AddRequestFlags adds dataset selection and filtering flags to a command.
func AddRequestFlags(cmd *cobra.Command) *RequestFlags {
	flags := &RequestFlags{}

	cmd.Flags().StringArrayVarP(&flags.Datasets, "dataset", "d", nil,
		"Dataset to collect (repeatable, default all)")
	cmd.Flags().BoolVar(&flags.Latest, "latest", false,
		"Keep only the most recent values")
	cmd.Flags().StringSliceVar(&flags.ISO3, "iso3", nil,
		"Keep rows for these ISO3 codes")
	cmd.Flags().StringSliceVar(&flags.Country, "country", nil,
		"Keep rows for these countries")
	cmd.Flags().StringArrayVar(&flags.Names, "ns", nil,
		"Keep rows for this National Society (repeatable)")
	cmd.Flags().StringArrayVar(&flags.Where, "where", nil,
		"Catalog metadata filter, e.g. 'privacy=public' (repeatable)")
	cmd.Flags().StringArrayVar(&flags.Args, "arg", nil,
		"Dataset argument as '[dataset:]name=value', e.g. 'OCAC:filepath=ocac.xlsx' (repeatable)")

	return flags
}

// Request builds the collector request described by the flags. Dataset
// entries may be glob or regex patterns; they are expanded against names.
func (f *RequestFlags) Request(names []string) (collector.Request, error) {
	datasets, err := ExpandDatasets(f.Datasets, names)
	if err != nil {
		return collector.Request{}, err
	}
	where, err := ParseKeyValues(f.Where)
	if err != nil {
		return collector.Request{}, err
	}
	args, err := ParseDatasetArgs(f.Args)
	if err != nil {
		return collector.Request{}, err
	}

	filters := dataset.Filters{}
	for key, values := range map[string][]string{
		constants.ColumnISO3:    f.ISO3,
		constants.ColumnCountry: f.Country,
		constants.ColumnName:    f.Names,
	} {
		if len(values) > 0 {
			filters[key] = values
		}
	}

	return collector.Request{
		Datasets:  datasets,
		Args:      args,
		Filters:   filters,
		Predicate: where,
		Latest:    f.Latest,
	}, nil
}

// ExpandDatasets expands dataset patterns such as 'GO *' against the
// catalog names. A pattern that matches nothing is an error.
func ExpandDatasets(requested, names []string) ([]string, error) {
	expanded, unmatched, err := matcher.Expand(requested, names)
	if err != nil {
		return nil, errors.NewValidationError("dataset", strings.Join(requested, ","), err.Error())
	}
	if len(unmatched) > 0 {
		return nil, errors.NewNotFoundError("dataset", strings.Join(unmatched, ", "))
	}
	return expanded, nil
}

// ParseKeyValues parses 'key=value' pairs. Keys are lowercased.
func ParseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, errors.NewValidationError("where", p, "expected key=value")
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// ParseDatasetArgs parses '[dataset:]name=value' arguments. Without a
// dataset prefix the argument applies to every dataset.
func ParseDatasetArgs(pairs []string) (map[string]dataset.Args, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]dataset.Args)
	for _, p := range pairs {
		target := collector.AllDatasets
		spec := p
		if ds, rest, ok := strings.Cut(p, ":"); ok && !strings.Contains(ds, "=") {
			target, spec = strings.TrimSpace(ds), rest
		}
		name, value, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || target == "" {
			return nil, errors.NewValidationError("arg", p, "expected [dataset:]name=value")
		}
		if out[target] == nil {
			out[target] = dataset.Args{}
		}
		out[target][name] = strings.TrimSpace(value)
	}
	return out, nil
}

// ParseValueKind parses any, quantitative or qualitative.
func ParseValueKind(s string) (collector.ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return collector.AnyValue, nil
	case "quantitative", "quant", "numeric":
		return collector.Quantitative, nil
	case "qualitative", "qual", "text":
		return collector.Qualitative, nil
	}
	return collector.AnyValue, fmt.Errorf("invalid value kind %q: must be any, quantitative or qualitative", s)
}
