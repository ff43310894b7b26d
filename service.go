package lmwkg

import (
	"fmt"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/extension"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/action/content"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/action/learner"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	approvalmem "github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval/memory"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/manifest"
	recfs "github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/record/fs"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot"
	snapfs "github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao/snapshot/fs"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging"
	qmem "github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging/memory"
)

// Service is the coordination-layer facade: one registry, one scheduler and
// one approval state machine, wired together from a single configuration.
type Service struct {
	config Config

	types        *extension.Types
	registry     *registry.Service
	orchestrator *orchestrator.Service
	approvals    approval.Service

	records   dao.Service[string, approval.Workflow]
	snapshots snapshot.Store
	events    messaging.Queue[approval.Event]
	manifests *manifest.Service

	listener        orchestrator.Listener
	extraServices   []func(*registry.Service) error
	skipBuiltins    bool
	runtime         *Runtime
	approvalOptions []approvalmem.Option
}

// New creates and wires the coordination layer. Unless disabled, the built-in
// content-processing and learner-personalization services are registered and
// their payload types added to the extension registry.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.config.Validate(); err != nil {
		return nil, err
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	ret.runtime = &Runtime{service: ret}
	return ret, nil
}

func (s *Service) init() error {
	if s.types == nil {
		s.types = extension.NewTypes()
	}
	if s.registry == nil {
		reg, err := registry.New()
		if err != nil {
			return err
		}
		s.registry = reg
	}

	if !s.skipBuiltins {
		for _, t := range content.Types() {
			s.types.Register(t)
		}
		for _, t := range learner.Types() {
			s.types.Register(t)
		}
		if err := content.Register(s.registry); err != nil {
			return err
		}
		if err := learner.Register(s.registry); err != nil {
			return err
		}
	}
	for _, register := range s.extraServices {
		if err := register(s.registry); err != nil {
			return err
		}
	}
	if err := s.registry.Validate(); err != nil {
		return err
	}

	var orchOptions []orchestrator.Option
	orchOptions = append(orchOptions, orchestrator.WithConfig(s.config.Orchestrator))
	if s.listener != nil {
		orchOptions = append(orchOptions, orchestrator.WithListener(s.listener))
	}
	s.orchestrator = orchestrator.New(s.registry, orchOptions...)

	stateOptions := s.StateOptions()
	if s.snapshots == nil && s.config.SnapshotBaseURL != "" {
		store, err := snapfs.New(s.config.SnapshotBaseURL, snapfs.WithStateOptions(stateOptions...))
		if err != nil {
			return fmt.Errorf("failed to create snapshot store: %w", err)
		}
		s.snapshots = store
	}
	if s.records == nil && s.config.RecordBaseURL != "" {
		records, err := recfs.New(s.config.RecordBaseURL)
		if err != nil {
			return fmt.Errorf("failed to create record store: %w", err)
		}
		s.records = records
	}
	if s.events == nil {
		s.events = qmem.NewQueue[approval.Event](s.config.Approval)
	}
	s.manifests = manifest.New(s.config.ManifestBaseURL)

	stages := s.config.Stages
	if len(stages) == 0 {
		stages = DefaultStagePlans()
	}
	approvalOptions := []approvalmem.Option{
		approvalmem.WithQueue(s.events),
		approvalmem.WithStateOptions(stateOptions...),
	}
	if s.records != nil {
		approvalOptions = append(approvalOptions, approvalmem.WithRecordDAO(s.records))
	}
	if s.snapshots != nil {
		approvalOptions = append(approvalOptions, approvalmem.WithSnapshotStore(s.snapshots))
	}
	approvalOptions = append(approvalOptions, s.approvalOptions...)

	approvals, err := approvalmem.New(s.orchestrator, stages, approvalOptions...)
	if err != nil {
		return err
	}
	s.approvals = approvals
	return nil
}

// StateOptions returns the options every workflow state should carry so that
// TypedValue keeps working on states rehydrated from snapshots.
func (s *Service) StateOptions() []execution.Option {
	return []execution.Option{
		execution.WithTypes(s.types),
		execution.WithConverter(execution.NewConverter()),
	}
}

// NewState creates a workflow state for one course, pre-wired with the
// payload type registry.
func (s *Service) NewState(courseID string, options ...execution.Option) *execution.State {
	return execution.NewState(courseID, append(s.StateOptions(), options...)...)
}

// Types exposes the payload type registry.
func (s *Service) Types() *extension.Types { return s.types }

// Registry exposes the service registry.
func (s *Service) Registry() *registry.Service { return s.registry }

// Orchestrator exposes the dependency-ordering scheduler.
func (s *Service) Orchestrator() *orchestrator.Service { return s.orchestrator }

// Approvals exposes the approval state machine.
func (s *Service) Approvals() approval.Service { return s.approvals }

// Runtime returns the runtime facade for day-to-day operations.
func (s *Service) Runtime() *Runtime { return s.runtime }
