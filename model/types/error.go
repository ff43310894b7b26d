package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Registry and planning defects; surfaced immediately, never retried.
var (
	ErrDuplicateService  = errors.New("service already registered")
	ErrUnknownService    = errors.New("unknown service")
	ErrMissingDependency = errors.New("missing dependency")
	ErrCyclicDependency  = errors.New("cyclic dependency")
)

// Execution and approval failures.
var (
	ErrTimeout                = errors.New("service timed out")
	ErrBlockedByPolicy        = errors.New("service blocked by policy")
	ErrInvalidStageTransition = errors.New("invalid stage transition")
)

func NewDuplicateServiceError(subsystem, id string) error {
	return fmt.Errorf("%w: %s/%s", ErrDuplicateService, subsystem, id)
}

func NewUnknownServiceError(id string) error {
	return fmt.Errorf("%w: %s", ErrUnknownService, id)
}

func NewMissingDependencyError(id, dependency string) error {
	return fmt.Errorf("%w: service %s depends on unregistered %s", ErrMissingDependency, id, dependency)
}

func NewCyclicDependencyError(ids []string) error {
	return fmt.Errorf("%w involving: %s", ErrCyclicDependency, strings.Join(ids, ", "))
}

func NewInvalidStageTransitionError(courseID string, detail string) error {
	return fmt.Errorf("%w: course %s %s", ErrInvalidStageTransition, courseID, detail)
}

// ExecutionError wraps a failure raised by a service handler, keeping the
// failing service id so callers can report how far a run progressed.
type ExecutionError struct {
	ServiceID string
	Cause     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("service %s failed: %v", e.ServiceID, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func NewExecutionError(serviceID string, cause error) *ExecutionError {
	return &ExecutionError{ServiceID: serviceID, Cause: cause}
}

// NewTimeoutError builds the timeout specialization of an execution error.
func NewTimeoutError(serviceID string, timeout time.Duration) *ExecutionError {
	return &ExecutionError{ServiceID: serviceID, Cause: fmt.Errorf("%w after %s", ErrTimeout, timeout)}
}

// Exit codes for the control surface; one per error kind.
const (
	CodeOK = iota
	CodeDuplicateService
	CodeUnknownService
	CodeMissingDependency
	CodeCyclicDependency
	CodeExecution
	CodeTimeout
	CodeInvalidStageTransition
)

// ErrorCode maps an error to its control-surface exit code.
func ErrorCode(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrDuplicateService):
		return CodeDuplicateService
	case errors.Is(err, ErrUnknownService):
		return CodeUnknownService
	case errors.Is(err, ErrMissingDependency):
		return CodeMissingDependency
	case errors.Is(err, ErrCyclicDependency):
		return CodeCyclicDependency
	case errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrInvalidStageTransition):
		return CodeInvalidStageTransition
	default:
		return CodeExecution
	}
}
