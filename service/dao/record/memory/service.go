package memory

import (
	"context"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/criteria"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/store"
)

// Service is an in-memory approval record DAO keyed by course id.
type Service struct {
	*store.MemoryStore[string, approval.Workflow]
}

var _ dao.Service[string, approval.Workflow] = (*Service)(nil)

// List returns records, optionally filtered by the "Status" parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Workflow, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*approval.Workflow, 0, len(all))
	for _, w := range all {
		if !criteria.FilterByStatus(string(w.Status), parameters) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, approval.Workflow](
		func(w *approval.Workflow) string { return w.CourseID })}
}
