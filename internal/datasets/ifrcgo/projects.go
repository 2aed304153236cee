package ifrcgo

import (
	"context"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// ProjectsName is the catalog name of the GO Projects dataset.
const ProjectsName = "GO Projects"

const columnProjectSociety = "project_country_detail.society_name"

func init() {
	factory.Register(factory.Spec{
		Name: ProjectsName,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return NewProjects(info, args, deps)
		},
	})
}

// Projects lists the projects reported in GO by and for National Societies.
type Projects struct {
	dataset.Base
	api
	policy identity.Policy
}

// NewProjects creates the GO Projects loader.
func NewProjects(info catalog.Info, args dataset.Args, deps factory.Deps) (*Projects, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	return &Projects{
		Base:   dataset.NewBase(info, deps.Registry),
		api:    newAPI(deps),
		policy: policy,
	}, nil
}

// Pull implements dataset.Dataset.
func (d *Projects) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	results, err := d.results(ctx, "/api/v2/project/")
	if err != nil {
		return nil, err
	}
	return table.FromObjects(results), nil
}

// Process implements dataset.Dataset. Any project that is not public fails
// the whole dataset.
func (d *Projects) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t := raw.Clone().DropEmpty(columnProjectSociety)
	if visibility := t.Distinct("visibility"); len(visibility) > 0 &&
		(len(visibility) != 1 || visibility[0] != "public") {
		return nil, errors.NewValidationError("visibility", visibility, "dataset contains non-public data")
	}
	formatDates(t, "start_date", "end_date")

	t, err := d.ResolveIdentity(ctx, t, identity.Name, columnProjectSociety, d.policy)
	if err != nil {
		return nil, err
	}
	t = d.RenameColumns(t, true)
	return d.OrderColumns(t, d.Info().ColumnNames(), false)
}
