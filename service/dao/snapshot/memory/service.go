package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
)

type key struct {
	courseID string
	stage    int
}

// Service is an in-memory, thread-safe snapshot store. Snapshots are cloned
// on both save and load so later mutations of a live state never leak into a
// persisted copy.
type Service struct {
	snapshots map[key]*execution.State
	mux       sync.RWMutex
}

var _ snapshot.Store = (*Service)(nil)

func (s *Service) Save(_ context.Context, courseID string, stage int, state *execution.State) error {
	if state == nil {
		return dao.ErrNilEntity
	}
	if courseID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.snapshots[key{courseID: courseID, stage: stage}] = state.Clone()
	return nil
}

func (s *Service) Load(_ context.Context, courseID string, stage int) (*execution.State, error) {
	if courseID == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	state, ok := s.snapshots[key{courseID: courseID, stage: stage}]
	s.mux.RUnlock()
	if !ok {
		return nil, fmt.Errorf("snapshot %s/stage-%d: %w", courseID, stage, dao.ErrNotFound)
	}
	return state.Clone(), nil
}

func New() *Service {
	return &Service{snapshots: map[key]*execution.State{}}
}
