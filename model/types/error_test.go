package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		expect      int
	}{
		{description: "nil maps to ok", err: nil, expect: CodeOK},
		{description: "duplicate service", err: NewDuplicateServiceError("content-processing", "chunker"), expect: CodeDuplicateService},
		{description: "unknown service", err: NewUnknownServiceError("ghost"), expect: CodeUnknownService},
		{description: "missing dependency", err: NewMissingDependencyError("b", "a"), expect: CodeMissingDependency},
		{description: "cyclic dependency", err: NewCyclicDependencyError([]string{"a", "b"}), expect: CodeCyclicDependency},
		{description: "timeout unwraps through execution error", err: NewTimeoutError("slow", time.Second), expect: CodeTimeout},
		{description: "invalid stage transition", err: NewInvalidStageTransitionError("course-1", "is finalized"), expect: CodeInvalidStageTransition},
		{description: "plain handler failure", err: NewExecutionError("chunker", fmt.Errorf("boom")), expect: CodeExecution},
		{description: "unclassified error", err: fmt.Errorf("boom"), expect: CodeExecution},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, ErrorCode(testCase.err), testCase.description)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := NewExecutionError("chunker", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "chunker")

	var execErr *ExecutionError
	assert.True(t, errors.As(fmt.Errorf("run failed: %w", err), &execErr))
	assert.Equal(t, "chunker", execErr.ServiceID)
}
