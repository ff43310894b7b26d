package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/internal/idgen"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/policy"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/progress"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/tracing"
)

// Config represents scheduler configuration.
type Config struct {
	// DefaultServiceTimeout applies to services whose descriptor declares no
	// timeout of its own.
	DefaultServiceTimeout time.Duration `json:"defaultServiceTimeout" yaml:"defaultServiceTimeout"`

	// EnforceRequiredInputs makes the scheduler fail a service whose declared
	// required inputs are absent from the state instead of invoking it.
	EnforceRequiredInputs bool `json:"enforceRequiredInputs" yaml:"enforceRequiredInputs"`
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() Config {
	return Config{
		DefaultServiceTimeout: 5 * time.Minute,
		EnforceRequiredInputs: true,
	}
}

// Listener is invoked after every service invocation, successful or not.
// Implementations can log, collect metrics or perform other side effects.
type Listener func(service *model.Service, state *execution.State, err error)

// Service walks the registered dependency graph, computes a deterministic
// linear order and invokes services strictly sequentially, propagating the
// shared workflow state from one service to the next.
type Service struct {
	registry *registry.Service
	config   Config
	listener Listener
}

// Registry exposes the backing registry for read-only queries.
func (s *Service) Registry() *registry.Service {
	return s.registry
}

// Plan produces a linear ordering of all services of one subsystem such that
// every dependency appears before its dependents.
func (s *Service) Plan(subsystem model.Subsystem) ([]string, error) {
	return s.plan(s.registry.Subsystem(subsystem))
}

// PlanAll produces a linear ordering across all registered services.
func (s *Service) PlanAll() ([]string, error) {
	return s.plan(s.registry.Services())
}

// PlanServices produces a linear ordering restricted to the given ids.
// Dependencies outside the set must still resolve in the registry but are
// assumed to have been satisfied by an earlier run (e.g. a previous approval
// stage); only in-set dependencies constrain the order.
func (s *Service) PlanServices(ids []string) ([]string, error) {
	candidates := make([]*model.Service, 0, len(ids))
	for _, id := range ids {
		svc, err := s.registry.Lookup(id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, svc)
	}
	return s.plan(candidates)
}

// plan implements Kahn's algorithm: repeatedly select a ready node with
// in-degree zero, breaking ties by registration order so two calls over the
// same registry state always return identical orderings.
func (s *Service) plan(candidates []*model.Service) ([]string, error) {
	inSet := make(map[string]*model.Service, len(candidates))
	for _, svc := range candidates {
		inSet[svc.ID] = svc
	}

	inDegree := make(map[string]int, len(candidates))
	dependents := make(map[string][]string, len(candidates))
	for _, svc := range candidates {
		inDegree[svc.ID] = 0
	}
	for _, svc := range candidates {
		for _, dep := range svc.DependsOn {
			if !s.registry.Has(dep) {
				return nil, types.NewMissingDependencyError(svc.ID, dep)
			}
			if _, ok := inSet[dep]; !ok {
				continue // satisfied by an earlier run
			}
			inDegree[svc.ID]++
			dependents[dep] = append(dependents[dep], svc.ID)
		}
	}

	ordered := make([]string, 0, len(candidates))
	for len(ordered) < len(candidates) {
		next := ""
		nextIndex := -1
		for id, degree := range inDegree {
			if degree != 0 {
				continue
			}
			if index := s.registry.Index(id); next == "" || index < nextIndex {
				next = id
				nextIndex = index
			}
		}
		if next == "" {
			remaining := make([]string, 0, len(inDegree))
			for id := range inDegree {
				remaining = append(remaining, id)
			}
			return nil, types.NewCyclicDependencyError(remaining)
		}
		ordered = append(ordered, next)
		delete(inDegree, next)
		for _, dependent := range dependents[next] {
			inDegree[dependent]--
		}
	}
	return ordered, nil
}

// Run iterates the plan, invoking each service in turn and merging its
// returned state. The first failure halts the remainder of the plan -
// downstream services are never invoked once an upstream dependency has
// failed. The final state is returned regardless of outcome; callers inspect
// per-service statuses to determine overall success.
//
// Run never memoizes: services already marked completed in the supplied
// state are re-executed.
func (s *Service) Run(ctx context.Context, plan []string, state *execution.State) (*execution.State, error) {
	if state == nil {
		state = execution.NewState("")
	}
	if state.RunID == "" {
		state.RunID = idgen.New()
	}

	ctx, span := tracing.StartSpan(ctx, "orchestrator.Run", "INTERNAL")
	span.WithAttributes(map[string]string{"run.id": state.RunID, "course.id": state.CourseID})

	tracker := progress.FromContext(ctx)
	tracker.Update(progress.Delta{Total: len(plan), Pending: len(plan)})

	for _, id := range plan {
		state.SetStatus(id, execution.StatusNotStarted)
	}

	for _, id := range plan {
		svc, err := s.registry.Lookup(id)
		if err != nil {
			tracing.EndSpan(span, err)
			return state, err
		}
		state.Begin(id)
		tracker.Update(progress.Delta{Pending: -1, Running: 1})

		out, err := s.invoke(ctx, svc, state)
		if s.listener != nil {
			s.listener(svc, state, err)
		}
		if err != nil {
			state.Fail(id, err)
			tracker.Update(progress.Delta{Running: -1, Failed: 1})
			tracing.EndSpan(span, err)
			return state, err
		}
		state.Merge(out)
		state.Complete(id)
		tracker.Update(progress.Delta{Running: -1, Completed: 1})
	}
	tracing.EndSpan(span, nil)
	return state, nil
}

// RunSubsystem plans and runs all services of one subsystem.
func (s *Service) RunSubsystem(ctx context.Context, subsystem model.Subsystem, state *execution.State) (*execution.State, error) {
	plan, err := s.Plan(subsystem)
	if err != nil {
		return state, err
	}
	return s.Run(ctx, plan, state)
}

// invoke executes one service against a copy of the state, enforcing policy,
// declared required inputs and the per-service timeout. The copy keeps a
// timed-out handler from mutating the run state after the scheduler has
// moved on.
func (s *Service) invoke(ctx context.Context, svc *model.Service, state *execution.State) (out *execution.State, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("orchestrator.invoke %s", svc.ID), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	if pol := policy.FromContext(ctx); pol != nil {
		if pol.Mode == policy.ModeDeny || !pol.IsAllowed(svc.ID) {
			return nil, types.NewExecutionError(svc.ID, types.ErrBlockedByPolicy)
		}
		if pol.Mode == policy.ModeAsk && pol.Ask != nil && !pol.Ask(ctx, svc.ID, pol) {
			return nil, types.NewExecutionError(svc.ID, types.ErrBlockedByPolicy)
		}
	}

	if s.config.EnforceRequiredInputs {
		for _, key := range svc.Requires {
			if !state.Has(key) {
				return nil, types.NewExecutionError(svc.ID, fmt.Errorf("required input %q is missing", key))
			}
		}
	}

	timeout := svc.Timeout
	if timeout <= 0 {
		timeout = s.config.DefaultServiceTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input := state.Clone()
	type result struct {
		out *execution.State
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := svc.Handler.Invoke(cctx, input)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			var execErr *types.ExecutionError
			if errors.As(r.err, &execErr) {
				return nil, r.err
			}
			return nil, types.NewExecutionError(svc.ID, r.err)
		}
		if r.out == nil {
			return input, nil
		}
		return r.out, nil
	case <-cctx.Done():
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, types.NewTimeoutError(svc.ID, timeout)
		}
		return nil, types.NewExecutionError(svc.ID, cctx.Err())
	}
}

// Option customises the scheduler.
type Option func(*Service)

// WithConfig overrides the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithDefaultServiceTimeout overrides the fallback per-service timeout.
func WithDefaultServiceTimeout(timeout time.Duration) Option {
	return func(s *Service) { s.config.DefaultServiceTimeout = timeout }
}

// WithListener attaches a listener invoked after every service invocation.
func WithListener(listener Listener) Option {
	return func(s *Service) { s.listener = listener }
}

// New creates a scheduler over the supplied registry.
func New(registry *registry.Service, options ...Option) *Service {
	ret := &Service{registry: registry, config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	return ret
}
