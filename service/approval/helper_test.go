package approval_test

import (
	"context"
	"testing"
	"time"

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

func newMachine(t *testing.T) approval.Service {
	passthrough := types.HandlerFunc(func(_ context.Context, state *execution.State) (*execution.State, error) {
		return state, nil
	})
	reg, err := registry.New(
		&model.Service{ID: "one", Subsystem: model.SubsystemContent, Handler: passthrough},
		&model.Service{ID: "two", Subsystem: model.SubsystemContent, Handler: passthrough},
		&model.Service{ID: "three", Subsystem: model.SubsystemContent, Handler: passthrough},
	)
	require.NoError(t, err)
	machine, err := memory.New(orchestrator.New(reg), []*approval.StagePlan{
		{Stage: 1, Services: []string{"one"}},
		{Stage: 2, Services: []string{"two"}},
		{Stage: 3, Services: []string{"three"}},
	})
	require.NoError(t, err)
	return machine
}

func TestAutoApprove(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machine := newMachine(t)

	_, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)

	stop := approval.AutoApprove(ctx, machine, 5*time.Millisecond)
	defer stop()

	record, err := approval.WaitForStatus(ctx, machine, "course-1",
		approval.StatusFinalized, 3*time.Second)
	require.NoError(t, err)
	assert.True(t, record.Finalized())
	assert.Len(t, record.Decisions, 3)
	for _, decision := range record.Decisions {
		assert.True(t, decision.Approved)
	}
}

func TestAutoReject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	machine := newMachine(t)

	_, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)

	stop := approval.AutoReject(ctx, machine, "not good enough", 5*time.Millisecond)
	defer stop()

	record, err := approval.WaitForStatus(ctx, machine, "course-1",
		approval.StatusInProgress, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, approval.StageKnowledgeGraph, record.Stage)
	assert.Equal(t, "not good enough", record.Comments)
}

func TestWaitForStatusTimeout(t *testing.T) {
	ctx := context.Background()
	machine := newMachine(t)

	_, err := machine.Start(ctx, "course-1", nil)
	require.NoError(t, err)

	// nothing ever decides, so finalized is never reached
	_, err = approval.WaitForStatus(ctx, machine, "course-1",
		approval.StatusFinalized, 50*time.Millisecond)
	assert.Error(t, err)
}
