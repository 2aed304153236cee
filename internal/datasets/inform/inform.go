// Package inform loads the INFORM Risk index from the European Commission
// Joint Research Centre.
package inform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ifrc-nsd/nsdata/internal/datasets/factory"
	"github.com/ifrc-nsd/nsdata/internal/transport"
	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/identity"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// Name is the catalog name of the dataset.
const Name = "INFORM Risk"

const indicatorID = "INFORM"

func init() {
	factory.Register(factory.Spec{
		Name: Name,
		New: func(info catalog.Info, args dataset.Args, deps factory.Deps) (dataset.Dataset, error) {
			return New(info, args, deps)
		},
	})
}

// Risk loads the overall INFORM Risk score of every country for the most
// recent published year.
type Risk struct {
	dataset.Base
	client  *transport.Client
	baseURL string
	policy  identity.Policy
	now     func() time.Time
}

// New creates the INFORM Risk loader.
func New(info catalog.Info, args dataset.Args, deps factory.Deps) (*Risk, error) {
	policy, err := args.Policy(identity.Warn)
	if err != nil {
		return nil, err
	}
	return &Risk{
		Base:    dataset.NewBase(info, deps.Registry),
		client:  deps.Client("inform"),
		baseURL: deps.URL(constants.INFORMURL),
		policy:  policy,
		now:     time.Now,
	}, nil
}

type workflow struct {
	WorkflowID int    `json:"WorkflowId"`
	Name       string `json:"Name"`
}

type score struct {
	ISO3           string `json:"Iso3"`
	IndicatorID    string `json:"IndicatorId"`
	IndicatorScore any    `json:"IndicatorScore"`
}

// Pull finds the workflow of this year's index, or last year's when this
// year has not been published yet, and reads its scores.
func (d *Risk) Pull(ctx context.Context, _ dataset.Filters) (*table.Table, error) {
	year := d.now().Year()
	workflows, err := d.workflows(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(workflows) == 0 {
		year--
		if workflows, err = d.workflows(ctx, year); err != nil {
			return nil, err
		}
		if len(workflows) == 0 {
			return nil, errors.NewNotFoundError("INFORM Risk workflows",
				fmt.Sprintf("INFORM%d or INFORM%d", year+1, year))
		}
	}

	id, err := pickWorkflow(workflows, fmt.Sprintf("INFORM Risk %d", year))
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().Int("workflow_id", id).Int("year", year).Msg("Using INFORM workflow")

	q := url.Values{}
	q.Set("WorkflowId", strconv.Itoa(id))
	q.Set("IndicatorId", indicatorID)
	var scores []score
	if err := d.client.GetJSON(ctx, d.baseURL+"/countries/Scores/?"+q.Encode(), &scores); err != nil {
		return nil, err
	}

	t := table.New("Iso3", constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear)
	for _, s := range scores {
		t.Rows = append(t.Rows, table.Row{
			"Iso3":                    s.ISO3,
			constants.ColumnIndicator: s.IndicatorID,
			constants.ColumnValue:     table.Stringify(s.IndicatorScore),
			constants.ColumnYear:      strconv.Itoa(year),
		})
	}
	return t, nil
}

func (d *Risk) workflows(ctx context.Context, year int) ([]workflow, error) {
	var out []workflow
	endpoint := fmt.Sprintf("%s/workflows/GetByWorkflowGroup/INFORM%d", d.baseURL, year)
	if err := d.client.GetJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func pickWorkflow(workflows []workflow, name string) (int, error) {
	var matches []workflow
	for _, w := range workflows {
		if w.Name == name {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return 0, errors.NewNotFoundError("INFORM Risk workflow", name)
	case 1:
		return matches[0].WorkflowID, nil
	default:
		return 0, errors.NewValidationError("workflow", name, "multiple workflows with this name")
	}
}

// Process implements dataset.Dataset.
func (d *Risk) Process(ctx context.Context, raw *table.Table) (*table.Table, error) {
	t, err := d.ResolveIdentity(ctx, raw.Clone(), identity.ISO3, "Iso3", d.policy)
	if err != nil {
		return nil, err
	}
	if t, err = d.RenameIndicators(ctx, t, identity.Raise); err != nil {
		return nil, err
	}
	return d.OrderColumns(t, []string{constants.ColumnIndicator, constants.ColumnValue, constants.ColumnYear}, true)
}
