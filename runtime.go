package lmwkg

import (
	"context"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
)

// Runtime is the day-to-day operational surface of the coordination layer.
type Runtime struct {
	service *Service
}

// Plan computes the deterministic execution order of one subsystem.
func (r *Runtime) Plan(subsystem model.Subsystem) ([]string, error) {
	return r.service.orchestrator.Plan(subsystem)
}

// RunSubsystem plans and runs all services of one subsystem against the
// supplied state, bypassing the approval workflow.
func (r *Runtime) RunSubsystem(ctx context.Context, subsystem model.Subsystem, state *execution.State) (*execution.State, error) {
	return r.service.orchestrator.RunSubsystem(ctx, subsystem, state)
}

// StartCourse begins the gated approval workflow for one course.
func (r *Runtime) StartCourse(ctx context.Context, courseID string, initial *execution.State) (*approval.Workflow, error) {
	if initial == nil {
		initial = r.service.NewState(courseID)
	} else {
		initial.Apply(r.service.StateOptions()...)
	}
	return r.service.approvals.Start(ctx, courseID, initial)
}

// Decide applies a reviewer decision to a course awaiting approval.
func (r *Runtime) Decide(ctx context.Context, courseID string, approved bool, comments string) (*approval.Workflow, error) {
	return r.service.approvals.Decide(ctx, courseID, approved, comments)
}

// Retry re-runs the current stage of a course after an out-of-band
// correction.
func (r *Runtime) Retry(ctx context.Context, courseID string) (*approval.Workflow, error) {
	return r.service.approvals.Retry(ctx, courseID)
}

// CourseStatus returns the approval record of one course.
func (r *Runtime) CourseStatus(ctx context.Context, courseID string) (*approval.Workflow, error) {
	return r.service.approvals.Status(ctx, courseID)
}

// PendingApprovals lists all courses awaiting a reviewer decision.
func (r *Runtime) PendingApprovals(ctx context.Context) ([]*approval.Workflow, error) {
	return r.service.approvals.ListPending(ctx)
}

// ApprovalQueue exposes the approval lifecycle event stream.
func (r *Runtime) ApprovalQueue() messaging.Queue[approval.Event] {
	return r.service.approvals.Queue()
}

// RegisterManifest loads a subsystem manifest and registers its service
// definitions, binding each to its handler by id.
func (r *Runtime) RegisterManifest(ctx context.Context, URL string, handlers map[string]types.Handler) error {
	loaded, err := r.service.manifests.Load(ctx, URL)
	if err != nil {
		return err
	}
	if err := loaded.Register(r.service.registry, handlers); err != nil {
		return err
	}
	return r.service.registry.Validate()
}
