package learner

import (
	"reflect"
	"time"

	"github.com/viant/x"
)

// State value keys produced and consumed by the learner-personalization
// services.
const (
	KeyResponses = "learnerResponses"
	KeyProfile   = "learnerProfile"
	KeyStrategy  = "learningStrategy"
	KeyPath      = "learningPath"
)

// Service ids.
const (
	ServiceProfiler      = "learner-profiler"
	ServiceStrategy      = "strategy-selector"
	ServicePathGenerator = "path-generator"
)

// Strategy names selected for a profile.
const (
	StrategyRemedial    = "remedial"
	StrategyBalanced    = "balanced"
	StrategyAccelerated = "accelerated"
)

// Response is one answer a learner gave during the intake assessment.
type Response struct {
	Concept string `json:"concept"`
	Correct bool   `json:"correct"`
}

// Profile aggregates the intake assessment into per-concept mastery.
type Profile struct {
	LearnerID string             `json:"learnerId"`
	Mastery   map[string]float64 `json:"mastery"`
	Score     float64            `json:"score"`
	BuiltAt   time.Time          `json:"builtAt"`
}

// Step is one entry of a personalized learning path.
type Step struct {
	Ordinal  int     `json:"ordinal"`
	Concept  string  `json:"concept"`
	Mastery  float64 `json:"mastery"`
	Optional bool    `json:"optional,omitempty"`
}

// Path is the ordered sequence of concepts a learner should work through.
type Path struct {
	LearnerID string    `json:"learnerId"`
	Strategy  string    `json:"strategy"`
	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"createdAt"`
}

// Types returns the payload types the learner services contribute to the
// extension registry.
func Types() []*x.Type {
	return []*x.Type{
		x.NewType(reflect.TypeOf(Response{}), x.WithName("learner.Response")),
		x.NewType(reflect.TypeOf(Profile{}), x.WithName("learner.Profile")),
		x.NewType(reflect.TypeOf(Step{}), x.WithName("learner.Step")),
		x.NewType(reflect.TypeOf(Path{}), x.WithName("learner.Path")),
	}
}
