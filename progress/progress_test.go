package progress

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	tracker := &Progress{}
	tracker.Update(Delta{Total: 3, Pending: 3})
	tracker.Update(Delta{Pending: -1, Running: 1})
	tracker.Update(Delta{Running: -1, Completed: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, 3, snapshot.TotalServices)
	assert.Equal(t, 2, snapshot.PendingServices)
	assert.Equal(t, 0, snapshot.RunningServices)
	assert.Equal(t, 1, snapshot.CompletedServices)
}

func TestProgress_OnChange(t *testing.T) {
	tracker := &Progress{}
	var seen []int
	tracker.OnChange(func(p Progress) { seen = append(seen, p.CompletedServices) })
	tracker.Update(Delta{Completed: 1})
	tracker.Update(Delta{Completed: 1})
	assert.Equal(t, []int{1, 2}, seen)
}

func TestProgress_NilSafe(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Total: 1})
	assert.Equal(t, Progress{}, tracker.Snapshot())
	tracker.OnChange(nil)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	tracker := &Progress{}
	ctx := WithTracker(context.Background(), tracker)
	assert.Same(t, tracker, FromContext(ctx))
}
