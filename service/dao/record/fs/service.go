package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/criteria"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Service implements a filesystem-based approval record DAO. Each record is a
// JSON document under <basePath>/<courseID>.json.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, approval.Workflow] = (*Service)(nil)

// Save persists a record to the filesystem.
func (s *Service) Save(ctx context.Context, record *approval.Workflow) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.CourseID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval record: %w", err)
	}
	filePath := s.recordPath(record.CourseID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save approval record to %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a record from the filesystem.
func (s *Service) Load(ctx context.Context, courseID string) (*approval.Workflow, error) {
	if courseID == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.recordPath(courseID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if approval record exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("approval record %s: %w", courseID, dao.ErrNotFound)
	}
	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read approval record: %w", err)
	}
	record := &approval.Workflow{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval record: %w", err)
	}
	return record, nil
}

// Delete removes a record from the filesystem.
func (s *Service) Delete(ctx context.Context, courseID string) error {
	if courseID == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.recordPath(courseID)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if approval record exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("approval record %s: %w", courseID, dao.ErrNotFound)
	}
	return s.fs.Delete(ctx, filePath)
}

// List returns all records, optionally filtered by the "Status" parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list approval records: %w", err)
	}
	var records []*approval.Workflow
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		record := &approval.Workflow{}
		if err := json.Unmarshal(data, record); err != nil {
			continue
		}
		if !criteria.FilterByStatus(string(record.Status), parameters) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// recordPath returns the file path for a course's approval record.
func (s *Service) recordPath(courseID string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", courseID))
}

// New creates a filesystem approval record DAO rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       afs.New(),
	}, nil
}
