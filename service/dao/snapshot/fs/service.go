package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sync"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Service implements a filesystem-based snapshot store. Each snapshot is a
// JSON document under <basePath>/<courseID>/stage-<N>.json; any scheme the
// abstract file system supports works (file, mem, s3, gs, ...).
type Service struct {
	basePath     string
	fs           afs.Service
	stateOptions []execution.Option
	mu           sync.RWMutex
}

var _ snapshot.Store = (*Service)(nil)

// Save persists a snapshot to the filesystem.
func (s *Service) Save(ctx context.Context, courseID string, stage int, state *execution.State) error {
	if state == nil {
		return dao.ErrNilEntity
	}
	if courseID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	filePath := s.snapshotPath(courseID, stage)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save snapshot to %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a snapshot from the filesystem.
func (s *Service) Load(ctx context.Context, courseID string, stage int) (*execution.State, error) {
	if courseID == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.snapshotPath(courseID, stage)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if snapshot exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot %s/stage-%d: %w", courseID, stage, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	state := &execution.State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	state.Apply(s.stateOptions...)
	return state, nil
}

// snapshotPath returns the file path for a course stage snapshot.
func (s *Service) snapshotPath(courseID string, stage int) string {
	return path.Join(s.basePath, courseID, fmt.Sprintf("stage-%d.json", stage))
}

// Option customises the filesystem store.
type Option func(*Service)

// WithStateOptions attaches state options (payload types, converter) applied
// to every loaded snapshot so TypedValue keeps working after a round-trip.
func WithStateOptions(options ...execution.Option) Option {
	return func(s *Service) { s.stateOptions = options }
}

// New creates a filesystem snapshot store rooted at basePath.
func New(basePath string, options ...Option) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	ret := &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       afs.New(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}
