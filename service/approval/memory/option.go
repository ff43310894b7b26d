package memory

import (
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
)

type Option func(*service)

// WithRecordDAO swaps the approval record store, e.g. for the filesystem
// implementation.
func WithRecordDAO(records dao.Service[string, approval.Workflow]) Option {
	return func(s *service) { s.records = records }
}

// WithSnapshotStore swaps the stage snapshot store.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(s *service) { s.snapshots = store }
}

// WithQueue swaps the lifecycle event queue.
func WithQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}

// WithStateOptions attaches state options (payload types, converter) applied
// to every snapshot loaded back from storage.
func WithStateOptions(options ...execution.Option) Option {
	return func(s *service) { s.stateOptions = options }
}
