package lmwkg

import (
	"fmt"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/orchestrator"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/action/content"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/action/learner"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/service/approval"
	qmem "github.com/Deepesh-vendoti/LMW-KG-sub000/service/messaging/memory"
)

// Config aggregates the configuration of the coordination layer. Zero base
// URLs keep records and snapshots in memory; set them to any URL the abstract
// file system supports (file, mem, s3, gs, ...) to persist across restarts.
type Config struct {
	Orchestrator orchestrator.Config `json:"orchestrator" yaml:"orchestrator"`
	Approval     qmem.Config         `json:"approval" yaml:"approval"`

	// SnapshotBaseURL roots the stage snapshot store.
	SnapshotBaseURL string `json:"snapshotBaseURL,omitempty" yaml:"snapshotBaseURL,omitempty"`

	// RecordBaseURL roots the approval record store.
	RecordBaseURL string `json:"recordBaseURL,omitempty" yaml:"recordBaseURL,omitempty"`

	// ManifestBaseURL resolves relative subsystem manifest locations.
	ManifestBaseURL string `json:"manifestBaseURL,omitempty" yaml:"manifestBaseURL,omitempty"`

	// Stages overrides the default stage plans.
	Stages []*approval.StagePlan `json:"stages,omitempty" yaml:"stages,omitempty"`
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Orchestrator.DefaultServiceTimeout < 0 {
		return fmt.Errorf("default service timeout cannot be negative")
	}
	for _, stage := range c.Stages {
		if len(stage.Services) == 0 {
			return fmt.Errorf("stage %d has no services", stage.Stage)
		}
	}
	return nil
}

// DefaultConfig returns the default coordination-layer configuration.
func DefaultConfig() Config {
	return Config{
		Orchestrator: orchestrator.DefaultConfig(),
		Approval:     qmem.DefaultConfig(),
	}
}

// DefaultStagePlans maps the three review stages onto the built-in pipeline
// services: the knowledge graph is built first, learner personalization runs
// once the graph is approved, and publication happens only after the final
// sign-off.
func DefaultStagePlans() []*approval.StagePlan {
	return []*approval.StagePlan{
		{
			Stage: approval.StageKnowledgeGraph,
			Name:  "knowledge-graph",
			Services: []string{
				content.ServiceInitializer,
				content.ServiceChunker,
				content.ServiceConceptExtractor,
				content.ServiceTreeBuilder,
			},
		},
		{
			Stage: approval.StageCourseStructure,
			Name:  "course-structure",
			Services: []string{
				learner.ServiceProfiler,
				learner.ServiceStrategy,
				learner.ServicePathGenerator,
			},
		},
		{
			Stage:    approval.StageFinalReview,
			Name:     "final-review",
			Services: []string{content.ServicePublisher},
		},
	}
}
