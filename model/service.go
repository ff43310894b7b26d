package model

import (
	"fmt"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
)

// Subsystem groups services that are planned and executed together.
type Subsystem string

const (
	SubsystemContent Subsystem = "content-processing"
	SubsystemLearner Subsystem = "learner-personalization"
)

// Service is the static descriptor of one unit of work: identity, subsystem
// membership, dependency ids, the state fields it consumes and guarantees to
// produce, a per-invocation timeout and the opaque handler. Descriptors are
// registered once at process start and are immutable thereafter.
type Service struct {
	ID        string        `json:"id"`
	Subsystem Subsystem     `json:"subsystem"`
	DependsOn []string      `json:"dependsOn,omitempty"`
	Requires  []string      `json:"requires,omitempty"`
	Produces  []string      `json:"produces,omitempty"`
	Timeout   time.Duration `json:"timeout,omitempty"`
	Handler   types.Handler `json:"-"`
}

// Validate reports structural defects of a single descriptor.
func (s *Service) Validate() error {
	if s == nil {
		return fmt.Errorf("service is nil")
	}
	if s.ID == "" {
		return fmt.Errorf("service id is required")
	}
	if s.Subsystem == "" {
		return fmt.Errorf("service %s: subsystem is required", s.ID)
	}
	if s.Handler == nil {
		return fmt.Errorf("service %s: handler is required", s.ID)
	}
	for _, dep := range s.DependsOn {
		if dep == s.ID {
			return types.NewCyclicDependencyError([]string{s.ID})
		}
	}
	return nil
}
