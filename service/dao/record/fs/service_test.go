package fs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDAO(t *testing.T) *Service {
	ret, err := New(fmt.Sprintf("mem://localhost/records/%v", t.Name()))
	require.NoError(t, err)
	return ret
}

func TestService_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	records := newDAO(t)

	record := &approval.Workflow{
		CourseID: "course-1",
		Stage:    approval.StageCourseStructure,
		Status:   approval.StatusAwaitingApproval,
		Decisions: []*approval.Decision{
			{Stage: approval.StageKnowledgeGraph, Approved: true},
		},
	}
	require.NoError(t, records.Save(ctx, record))

	loaded, err := records.Load(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StageCourseStructure, loaded.Stage)
	assert.Equal(t, approval.StatusAwaitingApproval, loaded.Status)
	require.Len(t, loaded.Decisions, 1)
	assert.True(t, loaded.Decisions[0].Approved)

	require.NoError(t, records.Delete(ctx, "course-1"))
	_, err = records.Load(ctx, "course-1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
}

func TestService_ListByStatus(t *testing.T) {
	ctx := context.Background()
	records := newDAO(t)

	require.NoError(t, records.Save(ctx, &approval.Workflow{
		CourseID: "course-1", Stage: 1, Status: approval.StatusAwaitingApproval}))
	require.NoError(t, records.Save(ctx, &approval.Workflow{
		CourseID: "course-2", Stage: 3, Status: approval.StatusFinalized}))
	require.NoError(t, records.Save(ctx, &approval.Workflow{
		CourseID: "course-3", Stage: 2, Status: approval.StatusAwaitingApproval}))

	all, err := records.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := records.List(ctx, dao.NewParameter("Status", string(approval.StatusAwaitingApproval)))
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	for _, record := range pending {
		assert.Equal(t, approval.StatusAwaitingApproval, record.Status)
	}
}

func TestService_Validation(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	records := newDAO(t)
	assert.Error(t, records.Save(context.Background(), nil))
	assert.Error(t, records.Save(context.Background(), &approval.Workflow{}))
	_, err = records.Load(context.Background(), "")
	assert.Error(t, err)
}
