package approval

import (
	"context"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
)

// Service is the approval state machine. It segments the scheduler's
// otherwise-continuous execution order into three human-gated phases,
// persisting a state snapshot at every stage boundary.
type Service interface {
	// Start creates the record for a course, runs the first stage's plan and
	// parks the workflow at awaitingApproval.
	Start(ctx context.Context, courseID string, initial *execution.State) (*Workflow, error)

	// Decide applies a reviewer decision to a workflow awaiting approval.
	// Approval advances to the next stage (running its plan against the saved
	// snapshot) or finalizes after the last stage; rejection returns the
	// current stage to inProgress with the snapshot untouched.
	Decide(ctx context.Context, courseID string, approved bool, comments string) (*Workflow, error)

	// Retry re-runs the current stage's plan from the prior pause point.
	// Permitted only while the record is inProgress, i.e. after a rejection
	// or a failed stage run has been corrected out-of-band.
	Retry(ctx context.Context, courseID string) (*Workflow, error)

	// Status is a read-only projection of the current stage/status/snapshot.
	Status(ctx context.Context, courseID string) (*Workflow, error)

	// ListPending returns all workflows awaiting a reviewer decision.
	ListPending(ctx context.Context) ([]*Workflow, error)

	// Queue exposes the approval lifecycle event stream.
	Queue() messaging.Queue[Event]
}
