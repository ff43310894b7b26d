package memory

import (
	"context"
	"fmt"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/internal/clock"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	recmemory "github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/record/memory"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
	snapmemory "github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot/memory"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
	qmem "github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging/memory"
)

// service drives the three-stage approval state machine. Records and
// snapshots default to in-memory DAOs; both can be swapped for persistent
// implementations via options.
type service struct {
	orchestrator *orchestrator.Service
	stages       []*approval.StagePlan

	records   dao.Service[string, approval.Workflow]
	snapshots snapshot.Store

	// fan-out queue for lifecycle events
	events messaging.Queue[approval.Event]

	// re-applied to every snapshot loaded back from storage
	stateOptions []execution.Option
}

// Start creates the approval record, runs the first stage's plan against the
// initial state and parks the workflow at awaitingApproval.
func (s *service) Start(ctx context.Context, courseID string, initial *execution.State) (*approval.Workflow, error) {
	if courseID == "" {
		return nil, dao.ErrInvalidID
	}
	if existing, _ := s.records.Load(ctx, courseID); existing != nil && !existing.Finalized() {
		return existing, fmt.Errorf("approval workflow for course %s already in flight", courseID)
	}
	if initial == nil {
		initial = execution.NewState(courseID, s.stateOptions...)
	}
	// State is scoped per course; never let a stray identifier leak in.
	initial.CourseID = courseID

	now := clock.Now()
	record := &approval.Workflow{
		CourseID:  courseID,
		Stage:     approval.FirstStage,
		Status:    approval.StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	// The pre-run snapshot backs a Retry of the first stage.
	if err := s.snapshots.Save(ctx, courseID, int(approval.FirstStage)-1, initial); err != nil {
		return nil, err
	}
	return s.runStage(ctx, record, initial)
}

// Decide applies one reviewer decision to a workflow awaiting approval.
func (s *service) Decide(ctx context.Context, courseID string, approved bool, comments string) (*approval.Workflow, error) {
	record, err := s.loadRecord(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if record.Status != approval.StatusAwaitingApproval {
		return record, types.NewInvalidStageTransitionError(courseID,
			fmt.Sprintf("is %s at stage %d, not awaiting approval", record.Status, record.Stage))
	}

	decision := &approval.Decision{
		Stage:     record.Stage,
		Approved:  approved,
		Comments:  comments,
		DecidedAt: clock.Now(),
	}
	record.Decisions = append(record.Decisions, decision)
	record.Comments = comments
	record.UpdatedAt = decision.DecidedAt
	_ = s.events.Publish(ctx, &approval.Event{
		Topic:    approval.TopicDecision,
		CourseID: courseID,
		Stage:    record.Stage,
		Status:   record.Status,
		Decision: decision,
	})

	if !approved {
		// Rejection keeps the stage and the snapshot; the caller corrects
		// out-of-band and retries.
		record.Status = approval.StatusInProgress
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if record.Stage == approval.LastStage {
		record.Status = approval.StatusFinalized
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		_ = s.events.Publish(ctx, &approval.Event{
			Topic:    approval.TopicFinalized,
			CourseID: courseID,
			Stage:    record.Stage,
			Status:   record.Status,
		})
		return record, nil
	}

	previous := record.Stage
	record.Stage++
	record.Status = approval.StatusInProgress
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	state, err := s.loadSnapshot(ctx, courseID, int(previous))
	if err != nil {
		return record, err
	}
	return s.runStage(ctx, record, state)
}

// Retry re-runs the current stage's plan from the prior pause point.
func (s *service) Retry(ctx context.Context, courseID string) (*approval.Workflow, error) {
	record, err := s.loadRecord(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if record.Status != approval.StatusInProgress {
		return record, types.NewInvalidStageTransitionError(courseID,
			fmt.Sprintf("is %s at stage %d, retry requires inProgress", record.Status, record.Stage))
	}
	state, err := s.loadSnapshot(ctx, courseID, int(record.Stage)-1)
	if err != nil {
		return record, err
	}
	return s.runStage(ctx, record, state)
}

// Status is a read-only projection of the record.
func (s *service) Status(ctx context.Context, courseID string) (*approval.Workflow, error) {
	return s.loadRecord(ctx, courseID)
}

// ListPending returns all workflows awaiting a reviewer decision.
func (s *service) ListPending(ctx context.Context) ([]*approval.Workflow, error) {
	return s.records.List(ctx, dao.NewParameter("Status", string(approval.StatusAwaitingApproval)))
}

// Queue exposes the approval lifecycle event stream.
func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

// runStage executes the plan of the record's current stage. On success the
// resulting state is snapshotted and the record parks at awaitingApproval;
// on failure the record stays inProgress with the partial state attached so
// callers can inspect exactly how far the run progressed. Failed stages are
// never auto-retried.
func (s *service) runStage(ctx context.Context, record *approval.Workflow, state *execution.State) (*approval.Workflow, error) {
	stagePlan := s.stagePlan(record.Stage)
	if stagePlan == nil {
		return record, fmt.Errorf("no stage plan configured for stage %d", record.Stage)
	}
	plan, err := s.orchestrator.PlanServices(stagePlan.Services)
	if err != nil {
		record.LastError = err.Error()
		record.UpdatedAt = clock.Now()
		_ = s.records.Save(ctx, record)
		return record, err
	}
	out, runErr := s.orchestrator.Run(ctx, plan, state)
	record.Snapshot = out
	record.UpdatedAt = clock.Now()

	if runErr != nil {
		record.LastError = runErr.Error()
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		_ = s.events.Publish(ctx, &approval.Event{
			Topic:    approval.TopicStageFailed,
			CourseID: record.CourseID,
			Stage:    record.Stage,
			Status:   record.Status,
		})
		return record, runErr
	}

	if err := s.snapshots.Save(ctx, record.CourseID, int(record.Stage), out); err != nil {
		return nil, err
	}
	record.LastError = ""
	record.Status = approval.StatusAwaitingApproval
	if err := s.records.Save(ctx, record); err != nil {
		return nil, err
	}
	_ = s.events.Publish(ctx, &approval.Event{
		Topic:    approval.TopicStageAwaiting,
		CourseID: record.CourseID,
		Stage:    record.Stage,
		Status:   record.Status,
	})
	return record, nil
}

// loadRecord fetches a record and re-attaches state options to its snapshot;
// records loaded back from persistent storage lose them otherwise.
func (s *service) loadRecord(ctx context.Context, courseID string) (*approval.Workflow, error) {
	record, err := s.records.Load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if record.Snapshot != nil {
		record.Snapshot.Apply(s.stateOptions...)
	}
	return record, nil
}

func (s *service) loadSnapshot(ctx context.Context, courseID string, stage int) (*execution.State, error) {
	state, err := s.snapshots.Load(ctx, courseID, stage)
	if err != nil {
		return nil, err
	}
	state.Apply(s.stateOptions...)
	return state, nil
}

func (s *service) stagePlan(stage approval.Stage) *approval.StagePlan {
	for _, candidate := range s.stages {
		if candidate.Stage == stage {
			return candidate
		}
	}
	return nil
}

// New creates the approval state machine over the supplied scheduler. The
// stage plans must cover stages 1..3 exactly once each.
func New(orch *orchestrator.Service, stages []*approval.StagePlan, options ...Option) (approval.Service, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}
	seen := map[approval.Stage]bool{}
	for _, stage := range stages {
		if stage.Stage < approval.FirstStage || stage.Stage > approval.LastStage {
			return nil, fmt.Errorf("invalid stage %d in stage plan", stage.Stage)
		}
		if seen[stage.Stage] {
			return nil, fmt.Errorf("duplicate plan for stage %d", stage.Stage)
		}
		seen[stage.Stage] = true
	}
	for stage := approval.FirstStage; stage <= approval.LastStage; stage++ {
		if !seen[stage] {
			return nil, fmt.Errorf("missing plan for stage %d", stage)
		}
	}
	ret := &service{
		orchestrator: orch,
		stages:       stages,
		records:      recmemory.New(),
		snapshots:    snapmemory.New(),
		events:       qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

var _ approval.Service = (*service)(nil)
