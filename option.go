package lmwkg

import (
	"github.com/Deepesh-vendoti/LMW-KG-sub000/extension"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	approvalmem "github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval/memory"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
	"github.com/viant/x"
)

// Option customises the coordination layer.
type Option func(*Service)

// WithConfig overrides the whole configuration.
func WithConfig(config Config) Option {
	return func(s *Service) { s.config = config }
}

// WithStagePlans overrides the default stage plans.
func WithStagePlans(stages ...*approval.StagePlan) Option {
	return func(s *Service) { s.config.Stages = stages }
}

// WithRegistry supplies a pre-populated registry.
func WithRegistry(reg *registry.Service) Option {
	return func(s *Service) { s.registry = reg }
}

// WithServices registers additional service descriptors after the built-ins.
func WithServices(services ...*model.Service) Option {
	return func(s *Service) {
		s.extraServices = append(s.extraServices, func(reg *registry.Service) error {
			for _, svc := range services {
				if err := reg.Register(svc); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// WithoutBuiltinServices skips registration of the built-in content and
// learner services; callers wire their own registry content.
func WithoutBuiltinServices() Option {
	return func(s *Service) { s.skipBuiltins = true }
}

// WithExtensionTypes registers additional payload types.
func WithExtensionTypes(types ...*x.Type) Option {
	return func(s *Service) {
		if s.types == nil {
			s.types = extension.NewTypes()
		}
		for _, t := range types {
			s.types.Register(t)
		}
	}
}

// WithListener attaches a scheduler listener invoked after every service
// invocation.
func WithListener(listener orchestrator.Listener) Option {
	return func(s *Service) { s.listener = listener }
}

// WithRecordDAO swaps the approval record store.
func WithRecordDAO(records dao.Service[string, approval.Workflow]) Option {
	return func(s *Service) { s.records = records }
}

// WithSnapshotStore swaps the stage snapshot store.
func WithSnapshotStore(store snapshot.Store) Option {
	return func(s *Service) { s.snapshots = store }
}

// WithApprovalQueue swaps the approval lifecycle event queue.
func WithApprovalQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *Service) { s.events = queue }
}

// WithApprovalOptions forwards options to the approval state machine.
func WithApprovalOptions(options ...approvalmem.Option) Option {
	return func(s *Service) { s.approvalOptions = append(s.approvalOptions, options...) }
}
