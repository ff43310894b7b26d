package approval

import (
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
)

// Stage is one of the three ordered review phases a course workflow passes
// through. Stages only ever advance; a rejection keeps the stage unchanged.
type Stage int

const (
	StageKnowledgeGraph  Stage = 1 // generated course knowledge graph
	StageCourseStructure Stage = 2 // learning objectives and course structure
	StageFinalReview     Stage = 3 // final sign-off before publication

	FirstStage = StageKnowledgeGraph
	LastStage  = StageFinalReview
)

// Status of an approval workflow record.
type Status string

const (
	StatusInProgress       Status = "inProgress"
	StatusAwaitingApproval Status = "awaitingApproval"
	StatusFinalized        Status = "finalized"
)

// Event topics published on the approval queue.
const (
	TopicStageAwaiting = "stage.awaitingApproval"
	TopicStageFailed   = "stage.failed"
	TopicDecision      = "decision.created"
	TopicFinalized     = "workflow.finalized"
)

// Event is the envelope published on every approval lifecycle change.
type Event struct {
	Topic    string    `json:"topic"`
	CourseID string    `json:"courseId"`
	Stage    Stage     `json:"stage"`
	Status   Status    `json:"status"`
	Decision *Decision `json:"decision,omitempty"`
}

// Decision records one reviewer action on a pending stage.
type Decision struct {
	Stage     Stage     `json:"stage"`
	Approved  bool      `json:"approved"`
	Comments  string    `json:"comments,omitempty"`
	DecidedAt time.Time `json:"decidedAt"`
}

// Workflow is the approval record of one course: current stage and status,
// the state snapshot taken at the last pause point and the reviewer decision
// history. A rejection clears nothing - state is preserved for correction
// and retry.
type Workflow struct {
	CourseID  string           `json:"courseId"`
	Stage     Stage            `json:"stage"`
	Status    Status           `json:"status"`
	Snapshot  *execution.State `json:"snapshot,omitempty"`
	Comments  string           `json:"comments,omitempty"`
	Decisions []*Decision      `json:"decisions,omitempty"`
	LastError string           `json:"lastError,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Finalized reports whether the workflow reached its terminal state.
func (w *Workflow) Finalized() bool {
	return w != nil && w.Status == StatusFinalized
}

// StagePlan binds one stage to the ordered set of service ids it runs.
type StagePlan struct {
	Stage    Stage    `json:"stage" yaml:"stage"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Services []string `json:"services" yaml:"services"`
}
