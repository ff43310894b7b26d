package execution

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/extension"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/internal/clock"
	"github.com/viant/structology/conv"
)

// Status describes the lifecycle of one service within a run.
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// StateListener is invoked every time State.Set overwrites an existing key
// or inserts a new one.
type StateListener func(s *State, key string, oldVal, newVal interface{})

// State is the shared workflow state passed through a scheduled run. The
// reserved fields (course, learner, per-service statuses, error details) are
// typed; everything a service produces lives in the open Values map.
//
// Within one run the state is monotonically additive - services may add or
// overwrite keys but the scheduler never removes keys produced earlier.
type State struct {
	RunID       string                 `json:"runId,omitempty"`
	CourseID    string                 `json:"courseId,omitempty"`
	LearnerID   string                 `json:"learnerId,omitempty"`
	Statuses    map[string]Status      `json:"statuses,omitempty"`
	LastService string                 `json:"lastService,omitempty"`
	Error       string                 `json:"error,omitempty"`
	StartedAt   time.Time              `json:"startedAt,omitempty"`
	Values      map[string]interface{} `json:"values,omitempty"`

	mu        sync.RWMutex
	types     *extension.Types
	converter *conv.Converter
	listeners []StateListener
}

// Set adds or updates a value in the state.
func (s *State) Set(key string, value interface{}) {
	s.mu.Lock()
	if s.Values == nil {
		s.Values = make(map[string]interface{})
	}
	old := s.Values[key]
	s.Values[key] = value
	listeners := s.listeners
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(s, key, old, value)
	}
}

// Get retrieves a value from the state.
func (s *State) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, exists := s.Values[key]
	return value, exists
}

// Has reports whether the key is present.
func (s *State) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// GetString retrieves a value as a string.
func (s *State) GetString(key string) (string, bool) {
	value, exists := s.Get(key)
	if !exists {
		return "", false
	}
	strVal, ok := value.(string)
	return strVal, ok
}

// GetInt retrieves a value as an integer.
func (s *State) GetInt(key string) (int, bool) {
	value, exists := s.Get(key)
	if !exists {
		return 0, false
	}
	intVal, ok := value.(int)
	return intVal, ok
}

// GetAll returns a copy of all values in the state.
func (s *State) GetAll() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]interface{}, len(s.Values))
	for k, v := range s.Values {
		result[k] = v
	}
	return result
}

// Status returns the recorded status of a service, defaulting to notStarted.
func (s *State) Status(serviceID string) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status, ok := s.Statuses[serviceID]; ok {
		return status
	}
	return StatusNotStarted
}

// SetStatus records the status of a service.
func (s *State) SetStatus(serviceID string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Statuses == nil {
		s.Statuses = make(map[string]Status)
	}
	s.Statuses[serviceID] = status
}

// Begin marks a service as running and remembers it as the last one invoked.
func (s *State) Begin(serviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Statuses == nil {
		s.Statuses = make(map[string]Status)
	}
	s.Statuses[serviceID] = StatusRunning
	s.LastService = serviceID
}

// Complete marks a service as completed.
func (s *State) Complete(serviceID string) {
	s.SetStatus(serviceID, StatusCompleted)
}

// Fail marks a service as failed and records the cause.
func (s *State) Fail(serviceID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Statuses == nil {
		s.Statuses = make(map[string]Status)
	}
	s.Statuses[serviceID] = StatusFailed
	s.LastService = serviceID
	if err != nil {
		s.Error = err.Error()
	}
}

// Merge copies reserved fields and values from the supplied state. Keys
// absent from the source are left untouched so that a merge can only add or
// overwrite, never remove.
func (s *State) Merge(from *State) {
	if from == nil || from == s {
		return
	}
	from.mu.RLock()
	defer from.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if from.CourseID != "" {
		s.CourseID = from.CourseID
	}
	if from.LearnerID != "" {
		s.LearnerID = from.LearnerID
	}
	if from.LastService != "" {
		s.LastService = from.LastService
	}
	if from.Error != "" {
		s.Error = from.Error
	}
	if len(from.Statuses) > 0 && s.Statuses == nil {
		s.Statuses = make(map[string]Status, len(from.Statuses))
	}
	for k, v := range from.Statuses {
		s.Statuses[k] = v
	}
	if len(from.Values) > 0 && s.Values == nil {
		s.Values = make(map[string]interface{}, len(from.Values))
	}
	for k, v := range from.Values {
		s.Values[k] = v
	}
}

// Clone creates a deep copy of the state maps; payload values themselves are
// shared as they are treated as immutable once produced.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &State{
		RunID:       s.RunID,
		CourseID:    s.CourseID,
		LearnerID:   s.LearnerID,
		LastService: s.LastService,
		Error:       s.Error,
		StartedAt:   s.StartedAt,
		Statuses:    make(map[string]Status, len(s.Statuses)),
		Values:      make(map[string]interface{}, len(s.Values)),
		types:       s.types,
		converter:   s.converter,
	}
	clone.listeners = append(clone.listeners, s.listeners...)
	for k, v := range s.Statuses {
		clone.Statuses[k] = v
	}
	for k, v := range s.Values {
		clone.Values[k] = v
	}
	return clone
}

// Apply re-attaches options to a state, typically after it has been loaded
// back from a persisted snapshot.
func (s *State) Apply(options ...Option) {
	for _, o := range options {
		o(s)
	}
}

// TypedValue converts a stored value to the named payload type. The data type
// accepts an optional collection modifier, e.g. "[]content.Chunk". States
// rehydrated from JSON snapshots hold generic maps and slices; this is the
// supported way to get the original types back.
func (s *State) TypedValue(dataType string, value interface{}) (interface{}, error) {
	if s.types == nil {
		return nil, fmt.Errorf("types not initialized")
	}
	aType := s.types.Lookup(dataType)
	if aType == nil {
		return nil, fmt.Errorf("type %v not registered", dataType)
	}
	return s.typedValue(aType.Type, value)
}

func (s *State) typedValue(aType reflect.Type, value interface{}) (interface{}, error) {
	if s.converter == nil {
		s.converter = conv.NewConverter(conv.DefaultOptions())
	}
	instance := newInstancePtr(aType)
	err := s.converter.Convert(value, instance)
	if aType.Kind() == reflect.Slice {
		instance = reflect.ValueOf(instance).Elem().Interface()
	}
	return instance, err
}

// newInstancePtr creates a new instance pointer of the given type.
func newInstancePtr(t reflect.Type) interface{} {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// NewState creates a new shared workflow state for one course.
func NewState(courseID string, options ...Option) *State {
	ret := &State{
		CourseID:  courseID,
		StartedAt: clock.Now(),
		Statuses:  make(map[string]Status),
		Values:    make(map[string]interface{}),
	}
	for _, o := range options {
		o(ret)
	}
	return ret
}
