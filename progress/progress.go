// Package progress provides a lightweight tracker that keeps aggregated
// service counters (total, completed, failed, ...) for a single pipeline run.
// The tracker instance lives in the execution context - every component that
// receives the context can atomically update the counters via the Delta
// helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the scheduler.
// The fields are signed and can be either positive or negative.
type Delta struct {
	Total     int
	Completed int
	Failed    int
	Running   int
	Pending   int
}

// Progress keeps aggregated service counters for one run. It is safe for
// concurrent use.
type Progress struct {
	// Identification - informative only, filled when the run starts.
	RunID     string
	CourseID  string
	StartedAt time.Time

	TotalServices     int
	CompletedServices int
	FailedServices    int
	RunningServices   int
	PendingServices   int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta to the tracker. If an onChange callback
// has been registered it is invoked with a copy of the updated tracker
// outside the critical section so the callback can perform slow operations
// without blocking the scheduler.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.TotalServices += d.Total
	p.CompletedServices += d.Completed
	p.FailedServices += d.Failed
	p.RunningServices += d.Running
	p.PendingServices += d.Pending

	snapshot := *p
	cb := p.onChange
	p.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return *p
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables the callback; only one callback can be active at a time.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	defer p.Unlock()
	p.onChange = cb
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithTracker embeds the tracker in the context.
func WithTracker(ctx context.Context, p *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the tracker, or nil when none is attached.
func FromContext(ctx context.Context) *Progress {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Progress); ok {
		return v
	}
	return nil
}
