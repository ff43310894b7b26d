package registry

import (
	"sync"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
)

// Service maps service ids to their descriptors. Registration order is
// preserved; the scheduler uses it to break ties deterministically. The
// registry is constructor-injected into whatever needs it - there is no
// package-level instance.
type Service struct {
	mux      sync.RWMutex
	services map[string]*model.Service
	order    []string
}

// Register adds a descriptor. Ids are unique across the whole registry; a
// duplicate registration is a configuration defect.
func (s *Service) Register(svc *model.Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.services[svc.ID]; ok {
		return types.NewDuplicateServiceError(string(svc.Subsystem), svc.ID)
	}
	s.services[svc.ID] = svc
	s.order = append(s.order, svc.ID)
	return nil
}

// MustRegister registers a descriptor and panics on error; intended for
// static wiring at process start.
func (s *Service) MustRegister(svc *model.Service) {
	if err := s.Register(svc); err != nil {
		panic(err)
	}
}

// Lookup returns a descriptor by id.
func (s *Service) Lookup(id string) (*model.Service, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return nil, types.NewUnknownServiceError(id)
	}
	return svc, nil
}

// Has reports whether the id is registered.
func (s *Service) Has(id string) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	_, ok := s.services[id]
	return ok
}

// Services returns all descriptors in registration order.
func (s *Service) Services() []*model.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	out := make([]*model.Service, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.services[id])
	}
	return out
}

// Subsystem returns the descriptors of one subsystem in registration order.
// Registration order is not execution order; plans are computed separately.
func (s *Service) Subsystem(subsystem model.Subsystem) []*model.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	var out []*model.Service
	for _, id := range s.order {
		if svc := s.services[id]; svc.Subsystem == subsystem {
			out = append(out, svc)
		}
	}
	return out
}

// Index returns the registration position of an id, or -1 when absent.
func (s *Service) Index(id string) int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	for i, candidate := range s.order {
		if candidate == id {
			return i
		}
	}
	return -1
}

// Validate checks the whole dependency graph: every declared dependency must
// resolve to a registered id and the graph must be acyclic. The call has no
// side effects beyond reporting.
func (s *Service) Validate() error {
	s.mux.RLock()
	defer s.mux.RUnlock()

	for _, id := range s.order {
		for _, dep := range s.services[id].DependsOn {
			if _, ok := s.services[dep]; !ok {
				return types.NewMissingDependencyError(id, dep)
			}
		}
	}

	// Depth-first search with a recursion-stack marker to detect cycles.
	visited := make(map[string]bool, len(s.order))
	onStack := make(map[string]bool, len(s.order))
	var visit func(id string) []string
	visit = func(id string) []string {
		visited[id] = true
		onStack[id] = true
		for _, dep := range s.services[id].DependsOn {
			if onStack[dep] {
				return []string{dep, id}
			}
			if !visited[dep] {
				if cycle := visit(dep); cycle != nil {
					return append(cycle, id)
				}
			}
		}
		onStack[id] = false
		return nil
	}
	for _, id := range s.order {
		if visited[id] {
			continue
		}
		if cycle := visit(id); cycle != nil {
			return types.NewCyclicDependencyError(cycle)
		}
	}
	return nil
}

// Reset discards all registrations. Test harnesses only.
func (s *Service) Reset() {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.services = make(map[string]*model.Service)
	s.order = nil
}

// New creates a registry, optionally pre-registering descriptors.
func New(services ...*model.Service) (*Service, error) {
	ret := &Service{services: make(map[string]*model.Service)}
	for _, svc := range services {
		if err := ret.Register(svc); err != nil {
			return nil, err
		}
	}
	return ret, nil
}
