package approval

import (
	"context"
	"fmt"
	"time"
)

// DecisionFunc decides what to do with a pending workflow.
// Return (true,  "") to approve
//
//	(false, "…") to reject with comments.
type DecisionFunc func(w *Workflow) (approved bool, comments string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every pending workflow. It returns stop() - call it (or cancel ctx) to
// exit.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				pending, _ := svc.ListPending(ctx)
				for _, w := range pending {
					ok, comments := fn(w)
					_, _ = svc.Decide(ctx, w.CourseID, ok, comments)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending workflows.
func AutoApprove(ctx context.Context, svc Service, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Workflow) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending workflows with the given
// comments.
func AutoReject(ctx context.Context, svc Service, comments string, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Workflow) (bool, string) { return false, comments }, interval)
}

// WaitForStatus polls the workflow record until it reaches the wanted status
// or the timeout elapses.
func WaitForStatus(ctx context.Context, svc Service, courseID string, status Status, timeout time.Duration) (*Workflow, error) {
	deadline := time.Now().Add(timeout)
	for {
		w, err := svc.Status(ctx, courseID)
		if err == nil && w.Status == status {
			return w, nil
		}
		if time.Now().After(deadline) {
			if err != nil {
				return nil, err
			}
			return w, fmt.Errorf("course %s: timed out waiting for status %s (current %s)", courseID, status, w.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
