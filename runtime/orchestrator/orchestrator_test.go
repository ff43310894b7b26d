package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/policy"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recording(id string, invoked *[]string) types.Handler {
	return types.HandlerFunc(func(_ context.Context, state *execution.State) (*execution.State, error) {
		*invoked = append(*invoked, id)
		state.Set(id, true)
		return state, nil
	})
}

func failing(err error) types.Handler {
	return types.HandlerFunc(func(_ context.Context, _ *execution.State) (*execution.State, error) {
		return nil, err
	})
}

func descriptor(id string, handler types.Handler, deps ...string) *model.Service {
	return &model.Service{
		ID:        id,
		Subsystem: model.SubsystemContent,
		DependsOn: deps,
		Handler:   handler,
	}
}

func TestService_Plan(t *testing.T) {
	var invoked []string
	testCases := []struct {
		description string
		services    []*model.Service
		expect      []string
		expectErr   error
	}{
		{
			description: "chain follows dependencies",
			services: []*model.Service{
				descriptor("c", recording("c", &invoked), "b"),
				descriptor("b", recording("b", &invoked), "a"),
				descriptor("a", recording("a", &invoked)),
			},
			expect: []string{"a", "b", "c"},
		},
		{
			description: "independent services keep registration order",
			services: []*model.Service{
				descriptor("z", recording("z", &invoked)),
				descriptor("a", recording("a", &invoked)),
				descriptor("m", recording("m", &invoked)),
			},
			expect: []string{"z", "a", "m"},
		},
		{
			description: "diamond resolves deterministically",
			services: []*model.Service{
				descriptor("root", recording("root", &invoked)),
				descriptor("left", recording("left", &invoked), "root"),
				descriptor("right", recording("right", &invoked), "root"),
				descriptor("sink", recording("sink", &invoked), "left", "right"),
			},
			expect: []string{"root", "left", "right", "sink"},
		},
		{
			description: "cycle is reported",
			services: []*model.Service{
				descriptor("a", recording("a", &invoked), "b"),
				descriptor("b", recording("b", &invoked), "a"),
			},
			expectErr: types.ErrCyclicDependency,
		},
		{
			description: "unregistered dependency is reported",
			services: []*model.Service{
				descriptor("a", recording("a", &invoked), "ghost"),
			},
			expectErr: types.ErrMissingDependency,
		},
	}

	for _, testCase := range testCases {
		reg, err := registry.New(testCase.services...)
		require.NoError(t, err, testCase.description)
		orch := orchestrator.New(reg)

		plan, err := orch.Plan(model.SubsystemContent)
		if testCase.expectErr != nil {
			assert.True(t, errors.Is(err, testCase.expectErr), testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.Equal(t, testCase.expect, plan, testCase.description)

		// planning is deterministic: repeated calls agree
		again, err := orch.Plan(model.SubsystemContent)
		require.NoError(t, err, testCase.description)
		assert.Equal(t, plan, again, testCase.description)
	}
}

func TestService_PlanServices(t *testing.T) {
	var invoked []string
	reg, err := registry.New(
		descriptor("a", recording("a", &invoked)),
		descriptor("b", recording("b", &invoked), "a"),
		descriptor("c", recording("c", &invoked), "b"),
	)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	// out-of-set dependency "a" is assumed satisfied by an earlier run
	plan, err := orch.PlanServices([]string{"c", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, plan)

	_, err = orch.PlanServices([]string{"ghost"})
	assert.True(t, errors.Is(err, types.ErrUnknownService))
}

func TestService_Run(t *testing.T) {
	var invoked []string
	reg, err := registry.New(
		descriptor("a", recording("a", &invoked)),
		descriptor("b", recording("b", &invoked), "a"),
		descriptor("c", recording("c", &invoked), "b"),
	)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	plan, err := orch.Plan(model.SubsystemContent)
	require.NoError(t, err)

	state, err := orch.Run(context.Background(), plan, execution.NewState("course-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, invoked)
	assert.NotEmpty(t, state.RunID)
	for _, id := range plan {
		assert.Equal(t, execution.StatusCompleted, state.Status(id))
		assert.True(t, state.Has(id))
	}
}

func TestService_RunFailFast(t *testing.T) {
	var invoked []string
	boom := fmt.Errorf("chunker exploded")
	reg, err := registry.New(
		descriptor("a", recording("a", &invoked)),
		descriptor("b", failing(boom), "a"),
		descriptor("c", recording("c", &invoked), "b"),
	)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	plan, err := orch.Plan(model.SubsystemContent)
	require.NoError(t, err)

	state, err := orch.Run(context.Background(), plan, execution.NewState("course-1"))
	require.Error(t, err)

	var execErr *types.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "b", execErr.ServiceID)

	// downstream services are never invoked once an upstream dependency failed
	assert.Equal(t, []string{"a"}, invoked)
	assert.Equal(t, execution.StatusCompleted, state.Status("a"))
	assert.Equal(t, execution.StatusFailed, state.Status("b"))
	assert.Equal(t, execution.StatusNotStarted, state.Status("c"))
	assert.Equal(t, "b", state.LastService)
	assert.NotEmpty(t, state.Error)
}

func TestService_RunTimeout(t *testing.T) {
	slow := &model.Service{
		ID:        "slow",
		Subsystem: model.SubsystemContent,
		Timeout:   20 * time.Millisecond,
		Handler: types.HandlerFunc(func(ctx context.Context, state *execution.State) (*execution.State, error) {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			return state, nil
		}),
	}
	reg, err := registry.New(slow)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	state, err := orch.Run(context.Background(), []string{"slow"}, execution.NewState("course-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTimeout))
	assert.Equal(t, types.CodeTimeout, types.ErrorCode(err))
	assert.Equal(t, execution.StatusFailed, state.Status("slow"))
}

func TestService_RunRequiredInputs(t *testing.T) {
	var invoked []string
	needy := descriptor("needy", recording("needy", &invoked))
	needy.Requires = []string{"rawContent"}
	reg, err := registry.New(needy)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	_, err = orch.Run(context.Background(), []string{"needy"}, execution.NewState("course-1"))
	require.Error(t, err)
	assert.Empty(t, invoked)

	state := execution.NewState("course-1",
		execution.WithValues(map[string]interface{}{"rawContent": "text"}))
	_, err = orch.Run(context.Background(), []string{"needy"}, state)
	assert.NoError(t, err)
	assert.Equal(t, []string{"needy"}, invoked)
}

func TestService_RunPolicy(t *testing.T) {
	var invoked []string
	reg, err := registry.New(
		descriptor("allowed", recording("allowed", &invoked)),
		descriptor("blocked", recording("blocked", &invoked)),
	)
	require.NoError(t, err)
	orch := orchestrator.New(reg)

	ctx := policy.WithPolicy(context.Background(), &policy.Policy{
		Mode:      policy.ModeAuto,
		BlockList: []string{"blocked"},
	})
	_, err = orch.Run(ctx, []string{"allowed", "blocked"}, execution.NewState("course-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBlockedByPolicy))
	assert.Equal(t, []string{"allowed"}, invoked)
}

func TestService_RunListener(t *testing.T) {
	var invoked, seen []string
	reg, err := registry.New(descriptor("a", recording("a", &invoked)))
	require.NoError(t, err)
	orch := orchestrator.New(reg, orchestrator.WithListener(
		func(svc *model.Service, _ *execution.State, err error) {
			seen = append(seen, svc.ID)
			assert.NoError(t, err)
		}))

	_, err = orch.Run(context.Background(), []string{"a"}, execution.NewState("course-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, seen)
}
