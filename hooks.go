package nsdata

import (
	"sync"

	"github.com/ifrc-nsd/nsdata/pkg/collector"
	"github.com/ifrc-nsd/nsdata/pkg/dataset"
)

// Hook function types for collection events
type (
	// DatasetCollectedHook is called for every dataset that produced a result
	DatasetCollectedHook func(res *dataset.Result)

	// DatasetSkippedHook is called for every dataset that was skipped
	DatasetSkippedHook func(skipped collector.Skipped)
)

// Hooks registers callbacks for collection events.
type Hooks interface {
	OnDatasetCollected(fn DatasetCollectedHook)
	OnDatasetSkipped(fn DatasetSkippedHook)
}

// hooks manages event callbacks for collection runs
type hooks struct {
	mu          sync.RWMutex
	onCollected []DatasetCollectedHook
	onSkipped   []DatasetSkippedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnDatasetCollected registers a callback for collected datasets.
func (c *client) OnDatasetCollected(fn DatasetCollectedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onCollected = append(c.hooks.onCollected, fn)
}

// OnDatasetSkipped registers a callback for skipped datasets.
func (c *client) OnDatasetSkipped(fn DatasetSkippedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onSkipped = append(c.hooks.onSkipped, fn)
}

// triggerBatch fires the hooks in batch order, results first.
func (h *hooks) triggerBatch(batch *collector.Batch) {
	h.mu.RLock()
	collected := h.onCollected
	h.mu.RUnlock()

	for _, res := range batch.Results {
		for _, fn := range collected {
			fn(res)
		}
	}
	h.triggerSkipped(batch.Skipped)
}

func (h *hooks) triggerSkipped(skipped []collector.Skipped) {
	h.mu.RLock()
	fns := h.onSkipped
	h.mu.RUnlock()

	for _, s := range skipped {
		for _, fn := range fns {
			fn(s)
		}
	}
}
