package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_IsAllowed(t *testing.T) {
	testCases := []struct {
		description string
		policy      *Policy
		serviceID   string
		expect      bool
	}{
		{
			description: "nil policy allows everything",
			serviceID:   "content-chunker",
			expect:      true,
		},
		{
			description: "empty allow list allows all",
			policy:      &Policy{Mode: ModeAuto},
			serviceID:   "content-chunker",
			expect:      true,
		},
		{
			description: "block list has priority",
			policy:      &Policy{AllowList: []string{"content-chunker"}, BlockList: []string{"content-chunker"}},
			serviceID:   "content-chunker",
			expect:      false,
		},
		{
			description: "comparison is case-insensitive",
			policy:      &Policy{BlockList: []string{"Content-Chunker"}},
			serviceID:   "content-chunker",
			expect:      false,
		},
		{
			description: "allow list excludes the unlisted",
			policy:      &Policy{AllowList: []string{"concept-extractor"}},
			serviceID:   "content-chunker",
			expect:      false,
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.policy.IsAllowed(testCase.serviceID), testCase.description)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	policy := &Policy{Mode: ModeAsk, AllowList: []string{"a"}, BlockList: []string{"b"}}
	restored := FromConfig(ToConfig(policy))
	assert.Equal(t, policy.Mode, restored.Mode)
	assert.Equal(t, policy.AllowList, restored.AllowList)
	assert.Equal(t, policy.BlockList, restored.BlockList)

	assert.Nil(t, ToConfig(nil))
	assert.Nil(t, FromConfig(nil))
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	policy := &Policy{Mode: ModeDeny}
	ctx := WithPolicy(context.Background(), policy)
	assert.Same(t, policy, FromContext(ctx))
}
