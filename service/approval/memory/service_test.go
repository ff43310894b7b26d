package memory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness wires a three-stage machine over three trivial services, one per
// stage, each marking the state so tests can assert which stages ran.
type harness struct {
	approval.Service
	failGamma bool
}

func newHarness(t *testing.T) *harness {
	ret := &harness{}
	mark := func(id string) types.Handler {
		return types.HandlerFunc(func(_ context.Context, state *execution.State) (*execution.State, error) {
			if id == "gamma" && ret.failGamma {
				return nil, fmt.Errorf("gamma is broken")
			}
			state.Set(id, true)
			return state, nil
		})
	}
	reg, err := registry.New(
		&model.Service{ID: "alpha", Subsystem: model.SubsystemContent, Handler: mark("alpha")},
		&model.Service{ID: "beta", Subsystem: model.SubsystemLearner, DependsOn: []string{"alpha"}, Handler: mark("beta")},
		&model.Service{ID: "gamma", Subsystem: model.SubsystemContent, DependsOn: []string{"beta"}, Handler: mark("gamma")},
	)
	require.NoError(t, err)

	svc, err := memory.New(orchestrator.New(reg), []*approval.StagePlan{
		{Stage: approval.StageKnowledgeGraph, Services: []string{"alpha"}},
		{Stage: approval.StageCourseStructure, Services: []string{"beta"}},
		{Stage: approval.StageFinalReview, Services: []string{"gamma"}},
	})
	require.NoError(t, err)
	ret.Service = svc
	return ret
}

func TestService_New(t *testing.T) {
	reg, err := registry.New()
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	testCases := []struct {
		description string
		stages      []*approval.StagePlan
		expectErr   bool
	}{
		{
			description: "all three stages covered",
			stages: []*approval.StagePlan{
				{Stage: 1, Services: []string{"a"}},
				{Stage: 2, Services: []string{"b"}},
				{Stage: 3, Services: []string{"c"}},
			},
		},
		{
			description: "missing stage is rejected",
			stages: []*approval.StagePlan{
				{Stage: 1, Services: []string{"a"}},
				{Stage: 3, Services: []string{"c"}},
			},
			expectErr: true,
		},
		{
			description: "duplicate stage is rejected",
			stages: []*approval.StagePlan{
				{Stage: 1, Services: []string{"a"}},
				{Stage: 1, Services: []string{"b"}},
				{Stage: 2, Services: []string{"c"}},
				{Stage: 3, Services: []string{"d"}},
			},
			expectErr: true,
		},
		{
			description: "out-of-range stage is rejected",
			stages: []*approval.StagePlan{
				{Stage: 0, Services: []string{"a"}},
				{Stage: 2, Services: []string{"b"}},
				{Stage: 3, Services: []string{"c"}},
			},
			expectErr: true,
		},
	}
	for _, testCase := range testCases {
		_, err := memory.New(orch, testCase.stages)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		assert.NoError(t, err, testCase.description)
	}
}

func TestService_FullApprovalFlow(t *testing.T) {
	ctx := context.Background()
	machine := newHarness(t)

	record, err := machine.Start(ctx, "course-1", execution.NewState("course-1"))
	require.NoError(t, err)
	assert.Equal(t, approval.StageKnowledgeGraph, record.Stage)
	assert.Equal(t, approval.StatusAwaitingApproval, record.Status)
	assert.True(t, record.Snapshot.Has("alpha"))
	assert.False(t, record.Snapshot.Has("beta"))

	// first approval advances to stage 2 and runs its plan over the snapshot
	record, err = machine.Decide(ctx, "course-1", true, "graph looks good")
	require.NoError(t, err)
	assert.Equal(t, approval.StageCourseStructure, record.Stage)
	assert.Equal(t, approval.StatusAwaitingApproval, record.Status)
	assert.True(t, record.Snapshot.Has("alpha"))
	assert.True(t, record.Snapshot.Has("beta"))

	// rejection keeps the stage, parks the record at inProgress
	record, err = machine.Decide(ctx, "course-1", false, "missing learning objectives")
	require.NoError(t, err)
	assert.Equal(t, approval.StageCourseStructure, record.Stage)
	assert.Equal(t, approval.StatusInProgress, record.Status)
	assert.Equal(t, "missing learning objectives", record.Comments)

	// retry re-runs stage 2 from the stage-1 snapshot
	record, err = machine.Retry(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StageCourseStructure, record.Stage)
	assert.Equal(t, approval.StatusAwaitingApproval, record.Status)

	record, err = machine.Decide(ctx, "course-1", true, "")
	require.NoError(t, err)
	assert.Equal(t, approval.StageFinalReview, record.Stage)
	assert.Equal(t, approval.StatusAwaitingApproval, record.Status)
	assert.True(t, record.Snapshot.Has("gamma"))

	// approving the last stage finalizes, never advances past it
	record, err = machine.Decide(ctx, "course-1", true, "ship it")
	require.NoError(t, err)
	assert.Equal(t, approval.StageFinalReview, record.Stage)
	assert.Equal(t, approval.StatusFinalized, record.Status)
	assert.True(t, record.Finalized())
	assert.Len(t, record.Decisions, 4)

	// a finalized workflow accepts no further decisions
	_, err = machine.Decide(ctx, "course-1", true, "")
	assert.True(t, errors.Is(err, types.ErrInvalidStageTransition))
	assert.Equal(t, types.CodeInvalidStageTransition, types.ErrorCode(err))
}

func TestService_DecideRequiresAwaiting(t *testing.T) {
	ctx := context.Background()
	machine := newHarness(t)

	_, err := machine.Decide(ctx, "unknown-course", true, "")
	assert.Error(t, err)

	record, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)
	require.Equal(t, approval.StatusAwaitingApproval, record.Status)

	record, err = machine.Decide(ctx, "course-1", false, "redo")
	require.NoError(t, err)
	require.Equal(t, approval.StatusInProgress, record.Status)

	// deciding while inProgress is an invalid transition
	_, err = machine.Decide(ctx, "course-1", true, "")
	assert.True(t, errors.Is(err, types.ErrInvalidStageTransition))
}

func TestService_StartRejectsInFlightDuplicate(t *testing.T) {
	ctx := context.Background()
	machine := newHarness(t)

	_, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)
	_, err = machine.Start(ctx, "course-1", nil)
	assert.Error(t, err)

	_, err = machine.Start(ctx, "", nil)
	assert.Error(t, err)
}

func TestService_FailedStageStaysInProgress(t *testing.T) {
	ctx := context.Background()
	machine := newHarness(t)

	record, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)
	record, err = machine.Decide(ctx, "course-1", true, "")
	require.NoError(t, err)
	require.Equal(t, approval.StageCourseStructure, record.Stage)

	// stage 3 fails mid-run: the record keeps inProgress with the error and
	// the partial state attached
	machine.failGamma = true
	record, err = machine.Decide(ctx, "course-1", true, "")
	require.Error(t, err)

	record, err = machine.Status(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StageFinalReview, record.Stage)
	assert.Equal(t, approval.StatusInProgress, record.Status)
	assert.NotEmpty(t, record.LastError)
	assert.Equal(t, execution.StatusFailed, record.Snapshot.Status("gamma"))

	// after the out-of-band fix, retry resumes from the stage-2 snapshot
	machine.failGamma = false
	record, err = machine.Retry(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusAwaitingApproval, record.Status)
	assert.Empty(t, record.LastError)

	// retry is rejected once the stage is awaiting approval again
	_, err = machine.Retry(ctx, "course-1")
	assert.True(t, errors.Is(err, types.ErrInvalidStageTransition))
}

func TestService_ListPendingAndEvents(t *testing.T) {
	ctx := context.Background()
	machine := newHarness(t)

	_, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)
	_, err = machine.Start(ctx, "course-2", nil)
	require.NoError(t, err)

	pending, err := machine.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// two stage.awaitingApproval events were published
	queue := machine.Queue()
	require.Equal(t, 2, queue.Size())
	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	event := message.T()
	assert.Equal(t, approval.TopicStageAwaiting, event.Topic)
	assert.Equal(t, approval.StageKnowledgeGraph, event.Stage)
	assert.NoError(t, message.Ack())
}
