// Package learner implements the learner-personalization services: intake
// profiling, strategy selection and personalized path generation over the
// concept graph built by the content-processing subsystem.
package learner

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/internal/clock"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/action/content"
)

// Mastery below this threshold makes a concept mandatory on every path.
const masteryThreshold = 0.6

// profile aggregates intake responses into per-concept mastery scores.
func profile(_ context.Context, state *execution.State) (*execution.State, error) {
	if state.LearnerID == "" {
		return nil, fmt.Errorf("state has no learner id")
	}
	responses, err := responsesFrom(state)
	if err != nil {
		return nil, err
	}
	correct := map[string]int{}
	total := map[string]int{}
	for _, response := range responses {
		total[response.Concept]++
		if response.Correct {
			correct[response.Concept]++
		}
	}
	mastery := make(map[string]float64, len(total))
	sum := 0.0
	for concept, count := range total {
		mastery[concept] = float64(correct[concept]) / float64(count)
		sum += mastery[concept]
	}
	score := 0.0
	if len(total) > 0 {
		score = sum / float64(len(total))
	}
	state.Set(KeyProfile, Profile{
		LearnerID: state.LearnerID,
		Mastery:   mastery,
		Score:     score,
		BuiltAt:   clock.Now(),
	})
	return state, nil
}

// selectStrategy picks the pacing strategy from the overall profile score.
func selectStrategy(_ context.Context, state *execution.State) (*execution.State, error) {
	learnerProfile, err := profileFrom(state)
	if err != nil {
		return nil, err
	}
	strategy := StrategyBalanced
	switch {
	case learnerProfile.Score < 0.4:
		strategy = StrategyRemedial
	case learnerProfile.Score >= 0.8:
		strategy = StrategyAccelerated
	}
	state.Set(KeyStrategy, strategy)
	return state, nil
}

// generatePath orders the course concepts for this learner: weakest mastery
// first, concept weight breaking ties. Accelerated learners may skip concepts
// they have already mastered; remedial learners get every concept mandatory.
func generatePath(_ context.Context, state *execution.State) (*execution.State, error) {
	concepts, err := content.ConceptsFrom(state)
	if err != nil {
		return nil, err
	}
	learnerProfile, err := profileFrom(state)
	if err != nil {
		return nil, err
	}
	strategy, _ := state.GetString(KeyStrategy)
	if strategy == "" {
		strategy = StrategyBalanced
	}
	mastery := func(concept string) float64 {
		if value, ok := learnerProfile.Mastery[concept]; ok {
			return value
		}
		return 0
	}
	ordered := make([]content.Concept, len(concepts))
	copy(ordered, concepts)
	sort.SliceStable(ordered, func(i, j int) bool {
		mi, mj := mastery(ordered[i].Name), mastery(ordered[j].Name)
		if mi != mj {
			return mi < mj
		}
		return ordered[i].Weight > ordered[j].Weight
	})
	steps := make([]Step, 0, len(ordered))
	for _, concept := range ordered {
		m := mastery(concept.Name)
		optional := strategy == StrategyAccelerated && m >= masteryThreshold
		if strategy == StrategyRemedial {
			optional = false
		}
		steps = append(steps, Step{
			Ordinal:  len(steps),
			Concept:  concept.Name,
			Mastery:  m,
			Optional: optional,
		})
	}
	state.Set(KeyPath, Path{
		LearnerID: state.LearnerID,
		Strategy:  strategy,
		Steps:     steps,
		CreatedAt: clock.Now(),
	})
	return state, nil
}

func responsesFrom(state *execution.State) ([]Response, error) {
	value, ok := state.Get(KeyResponses)
	if !ok {
		return nil, fmt.Errorf("state has no %s", KeyResponses)
	}
	if responses, ok := value.([]Response); ok {
		return responses, nil
	}
	typed, err := state.TypedValue("[]learner.Response", value)
	if err != nil {
		return nil, err
	}
	return typed.([]Response), nil
}

func profileFrom(state *execution.State) (Profile, error) {
	value, ok := state.Get(KeyProfile)
	if !ok {
		return Profile{}, fmt.Errorf("state has no %s", KeyProfile)
	}
	if learnerProfile, ok := value.(Profile); ok {
		return learnerProfile, nil
	}
	typed, err := state.TypedValue("learner.Profile", value)
	if err != nil {
		return Profile{}, err
	}
	return *typed.(*Profile), nil
}

// Services returns the learner-personalization descriptors in registration
// order.
func Services() []*model.Service {
	return []*model.Service{
		{
			ID:        ServiceProfiler,
			Subsystem: model.SubsystemLearner,
			Requires:  []string{KeyResponses},
			Produces:  []string{KeyProfile},
			Timeout:   30 * time.Second,
			Handler:   types.HandlerFunc(profile),
		},
		{
			ID:        ServiceStrategy,
			Subsystem: model.SubsystemLearner,
			DependsOn: []string{ServiceProfiler},
			Requires:  []string{KeyProfile},
			Produces:  []string{KeyStrategy},
			Handler:   types.HandlerFunc(selectStrategy),
		},
		{
			ID:        ServicePathGenerator,
			Subsystem: model.SubsystemLearner,
			DependsOn: []string{ServiceStrategy},
			Requires:  []string{content.KeyConcepts, KeyProfile, KeyStrategy},
			Produces:  []string{KeyPath},
			Timeout:   time.Minute,
			Handler:   types.HandlerFunc(generatePath),
		},
	}
}

// Register adds all learner-personalization services to the registry.
func Register(reg *registry.Service) error {
	for _, svc := range Services() {
		if err := reg.Register(svc); err != nil {
			return err
		}
	}
	return nil
}

// Handlers exposes the handlers by service id for manifest-driven wiring.
func Handlers() map[string]types.Handler {
	handlers := make(map[string]types.Handler)
	for _, svc := range Services() {
		handlers[svc.ID] = svc.Handler
	}
	return handlers
}
