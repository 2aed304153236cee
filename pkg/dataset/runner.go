package dataset

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ifrc-nsd/nsdata/pkg/catalog"
	"github.com/ifrc-nsd/nsdata/pkg/constants"
	"github.com/ifrc-nsd/nsdata/pkg/errors"
	"github.com/ifrc-nsd/nsdata/pkg/logging"
	"github.com/ifrc-nsd/nsdata/pkg/registry"
	"github.com/ifrc-nsd/nsdata/pkg/table"
)

// State is the lifecycle stage of a Runner.
type State int

const (
	// StateConstructed is the state before any data is read.
	StateConstructed State = iota
	// StateRawLoaded means Pull has returned.
	StateRawLoaded
	// StateNormalized means Process has returned.
	StateNormalized
	// StateFinalized means latest and row filters have been applied.
	StateFinalized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRawLoaded:
		return "raw-loaded"
	case StateNormalized:
		return "normalized"
	case StateFinalized:
		return "finalized"
	}
	return "unknown"
}

// Runner drives a Dataset through pull, process and finalise.
type Runner struct {
	ds       Dataset
	info     catalog.Info
	registry *registry.Cache

	mu    sync.Mutex
	state State
}

// NewRunner creates a runner for a dataset and its catalog entry.
func NewRunner(ds Dataset, info catalog.Info, reg *registry.Cache) *Runner {
	if reg == nil {
		reg = registry.Default()
	}
	return &Runner{ds: ds, info: info, registry: reg}
}

// Name returns the dataset name.
func (r *Runner) Name() string {
	return r.ds.Name()
}

// Info returns the dataset's catalog entry.
func (r *Runner) Info() catalog.Info {
	return r.info
}

// State returns the stage reached by the most recent GetData call.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// GetData validates filters, pulls and processes the data, optionally keeps
// only the latest values, and filters rows. Each call returns a fresh Result.
func (r *Runner) GetData(ctx context.Context, filters Filters, latest bool) (*Result, error) {
	ctx = logging.WithDataset(ctx, r.ds.Name())
	logger := logging.FromContext(ctx)
	r.setState(StateConstructed)

	if !filters.Empty() {
		reg, err := r.registry.Get()
		if err != nil {
			return nil, err
		}
		if err := ValidateFilters(reg, filters); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	raw, err := r.ds.Pull(logging.WithOperation(ctx, "pull"), filters)
	if err != nil {
		return nil, err
	}
	r.setState(StateRawLoaded)
	logger.Debug().Int("rows", raw.Len()).Dur("elapsed", time.Since(start)).Msg("Pulled raw data")
	r.warnUnpushed(ctx, filters)

	data, err := r.ds.Process(logging.WithOperation(ctx, "process"), raw)
	if err != nil {
		return nil, err
	}
	r.setState(StateNormalized)

	if latest {
		data, err = r.latest(ctx, data)
		if err != nil {
			return nil, err
		}
	}

	data = filters.Apply(data)
	r.setState(StateFinalized)
	logger.Debug().Int("rows", data.Len()).Msg("Dataset ready")

	return &Result{
		Name:   r.ds.Name(),
		Info:   r.info,
		Data:   data,
		Format: r.info.Format,
		Latest: latest,
	}, nil
}

func (r *Runner) latest(ctx context.Context, data *table.Table) (*table.Table, error) {
	if l, ok := r.ds.(Latester); ok {
		return l.Latest(ctx, data)
	}
	if r.info.Format == catalog.FormatIndicators {
		if !data.HasColumn(constants.ColumnYear) {
			return nil, errors.NewSchemaMismatchError(r.ds.Name(), "columns", []string{constants.ColumnYear}, nil)
		}
		return FilterLatest(data), nil
	}
	logging.FromContext(ctx).Warn().Msg("Latest is not available for this dataset; returning all data")
	return data, nil
}

func (r *Runner) warnUnpushed(ctx context.Context, filters Filters) {
	keys := filters.Keys()
	if len(keys) == 0 {
		return
	}
	var pushed []string
	if p, ok := r.ds.(FilterPusher); ok {
		pushed = p.PushedFilters()
	}
	var unsupported []string
	for _, k := range keys {
		if !slices.Contains(pushed, k) {
			unsupported = append(unsupported, k)
		}
	}
	if len(unsupported) == 0 {
		return
	}
	err := &errors.UnsupportedFilterError{Dataset: r.ds.Name(), Keys: unsupported}
	logging.FromContext(ctx).Warn().Strs("filters", unsupported).Msg(err.Error())
}
