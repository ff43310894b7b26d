package content

import (
	"reflect"
	"time"

	"github.com/viant/x"
)

// State value keys produced and consumed by the content-processing services.
const (
	KeyRawContent   = "rawContent"
	KeyCourseTitle  = "courseTitle"
	KeyChunks       = "chunks"
	KeyConcepts     = "concepts"
	KeyConceptEdges = "conceptEdges"
	KeyLearningTree = "learningTree"
	KeyPublished    = "publishedCourse"
)

// Service ids.
const (
	ServiceInitializer      = "course-initializer"
	ServiceChunker          = "content-chunker"
	ServiceConceptExtractor = "concept-extractor"
	ServiceTreeBuilder      = "tree-builder"
	ServicePublisher        = "course-publisher"
)

// Chunk is one contiguous piece of course content.
type Chunk struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
	Tokens  int    `json:"tokens"`
}

// Concept is a graph node extracted from the content.
type Concept struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Chunks []int  `json:"chunks,omitempty"`
}

// Edge links two concepts that co-occur within a chunk.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// TreeNode is one node of the generated learning tree.
type TreeNode struct {
	Concept  string      `json:"concept"`
	Children []*TreeNode `json:"children,omitempty"`
}

// PublishedCourse summarises the outcome of the final publication step.
type PublishedCourse struct {
	CourseID    string    `json:"courseId"`
	Title       string    `json:"title"`
	Chunks      int       `json:"chunks"`
	Concepts    int       `json:"concepts"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Types returns the payload types the content services contribute to the
// extension registry so snapshots can be rehydrated.
func Types() []*x.Type {
	return []*x.Type{
		x.NewType(reflect.TypeOf(Chunk{}), x.WithName("content.Chunk")),
		x.NewType(reflect.TypeOf(Concept{}), x.WithName("content.Concept")),
		x.NewType(reflect.TypeOf(Edge{}), x.WithName("content.Edge")),
		x.NewType(reflect.TypeOf(TreeNode{}), x.WithName("content.TreeNode")),
		x.NewType(reflect.TypeOf(PublishedCourse{}), x.WithName("content.PublishedCourse")),
	}
}
