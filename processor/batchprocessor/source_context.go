// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package batchprocessor // import "github.com/cloudobs/forwarder/processor/batchprocessor"

import (
	"encoding/json"
	"sync"

	"github.com/zoobzio/clockz"
)

// SourceContext carries the per-invocation facts that end up in the
// metadata of every batch of a run. Implementations live in this package.
type SourceContext interface {
	Kind() SourceKind
	// Summary returns the source specific metadata fields.
	Summary() map[string]any
	// Reset is called after each successful flush.
	Reset()

	unexported()
}

var (
	_ SourceContext = EventHubContext{}
	_ SourceContext = ResourcesContext{}
	_ SourceContext = (*VMMetricsContext)(nil)
)

// EventHubContext is the trigger metadata shared by all events of one
// invocation. It is repeated on every batch of the run.
type EventHubContext struct {
	PartitionContext      json.RawMessage
	SystemPropertiesArray []json.RawMessage
}

func (EventHubContext) Kind() SourceKind { return SourceKindEventHub }

func (c EventHubContext) Summary() map[string]any {
	partition := any(map[string]any{})
	if len(c.PartitionContext) > 0 {
		partition = c.PartitionContext
	}
	props := any(map[string]any{})
	if c.SystemPropertiesArray != nil {
		props = c.SystemPropertiesArray
	}
	return map[string]any{
		"AzureEventHubPartitionContext":      partition,
		"AzureEventHubSystemPropertiesArray": props,
		"ObserveNumEvents":                   len(c.SystemPropertiesArray),
	}
}

func (EventHubContext) Reset() {}

func (EventHubContext) unexported() {}

// ResourcesContext adds nothing beyond the common fields.
type ResourcesContext struct{}

func (ResourcesContext) Kind() SourceKind { return SourceKindResources }

func (ResourcesContext) Summary() map[string]any { return nil }

func (ResourcesContext) Reset() {}

func (ResourcesContext) unexported() {}

// VMMetricsEntry accounts for the metric queries of one VM within a batch.
type VMMetricsEntry struct {
	ResourceID   string  `json:"ResourceId"`
	Cost         float64 `json:"Cost"`
	Timespan     string  `json:"Timespan"`
	Interval     string  `json:"Interval"`
	StartTimeUTC string  `json:"StartTimeUtc"`
	EndTimeUTC   string  `json:"EndTimeUtc,omitempty"`
	TotalMetrics int     `json:"TotalMetrics"`
}

// VMMetricsContext collects one VMMetricsEntry per resource whose metrics
// were appended to the current batch. The collector calls BeginResource,
// AddCost, AddRecord and EndResource while it walks the VMs; the handler
// calls Reset after each flush. A resource still open at flush time
// contributes a partial entry and continues in a fresh entry, which only
// counts once it gains cost or records.
type VMMetricsContext struct {
	clock clockz.Clock

	mu   sync.Mutex
	done []VMMetricsEntry
	open *VMMetricsEntry
	// carried is set while open is a restart left by Reset with nothing
	// added to it yet.
	carried bool
}

// NewVMMetricsContext returns an empty context. A nil clock means wall time.
func NewVMMetricsContext(clock clockz.Clock) *VMMetricsContext {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &VMMetricsContext{clock: clock}
}

func (*VMMetricsContext) Kind() SourceKind { return SourceKindVMMetrics }

// BeginResource opens the entry for resourceID, closing any open one.
func (c *VMMetricsContext) BeginResource(resourceID, timespan, interval string, totalMetrics int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
	c.carried = false
	c.open = &VMMetricsEntry{
		ResourceID:   resourceID,
		Timespan:     timespan,
		Interval:     interval,
		StartTimeUTC: c.now(),
		TotalMetrics: totalMetrics,
	}
}

// AddCost records the cost of one metrics query against the open entry.
func (c *VMMetricsContext) AddCost(cost float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		return
	}
	c.open.Cost += cost
	c.open.EndTimeUTC = c.now()
	c.carried = false
}

// AddRecord notes that a record of the open resource joined the batch.
func (c *VMMetricsContext) AddRecord() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carried = false
}

// EndResource closes the open entry.
func (c *VMMetricsContext) EndResource() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *VMMetricsContext) Summary() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := make([]VMMetricsEntry, 0, len(c.done)+1)
	entries = append(entries, c.done...)
	if c.open != nil && !c.carried {
		entries = append(entries, *c.open)
	}
	return map[string]any{"AzureVmMetricsSummary": entries}
}

// Reset drops the closed entries. An open entry restarts with zero cost.
func (c *VMMetricsContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = nil
	if c.open != nil {
		c.open = &VMMetricsEntry{
			ResourceID:   c.open.ResourceID,
			Timespan:     c.open.Timespan,
			Interval:     c.open.Interval,
			StartTimeUTC: c.now(),
			TotalMetrics: c.open.TotalMetrics,
		}
		c.carried = true
	}
}

// Entries returns a copy of the closed entries.
func (c *VMMetricsContext) Entries() []VMMetricsEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]VMMetricsEntry(nil), c.done...)
}

func (*VMMetricsContext) unexported() {}

func (c *VMMetricsContext) closeLocked() {
	if c.open == nil {
		return
	}
	if !c.carried {
		c.done = append(c.done, *c.open)
	}
	c.open = nil
	c.carried = false
}

func (c *VMMetricsContext) now() string {
	return c.clock.Now().UTC().Format(TimeFormat)
}
