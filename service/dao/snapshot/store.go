package snapshot

import (
	"context"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
)

// Store persists the shared workflow state captured at a stage boundary.
// The approval state machine performs exactly one Save per pause and one
// Load per resume, so a storage layer can make the read-modify-write atomic.
type Store interface {
	// Save persists the state snapshot for the given course and stage.
	Save(ctx context.Context, courseID string, stage int, state *execution.State) error

	// Load returns the snapshot previously saved for the course and stage.
	Load(ctx context.Context, courseID string, stage int) (*execution.State, error)
}
