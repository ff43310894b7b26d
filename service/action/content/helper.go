package content

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
)

// chunksFrom reads the chunk slice, rehydrating it through the payload type
// registry when the state was loaded back from a JSON snapshot.
func chunksFrom(state *execution.State) ([]Chunk, error) {
	value, ok := state.Get(KeyChunks)
	if !ok {
		return nil, fmt.Errorf("state has no %s", KeyChunks)
	}
	if chunks, ok := value.([]Chunk); ok {
		return chunks, nil
	}
	typed, err := state.TypedValue("[]content.Chunk", value)
	if err != nil {
		return nil, err
	}
	return typed.([]Chunk), nil
}

// ConceptsFrom reads the concept slice the same way; exported because the
// learner-personalization services consume it across a stage boundary.
func ConceptsFrom(state *execution.State) ([]Concept, error) {
	return conceptsFrom(state)
}

func conceptsFrom(state *execution.State) ([]Concept, error) {
	value, ok := state.Get(KeyConcepts)
	if !ok {
		return nil, fmt.Errorf("state has no %s", KeyConcepts)
	}
	if concepts, ok := value.([]Concept); ok {
		return concepts, nil
	}
	typed, err := state.TypedValue("[]content.Concept", value)
	if err != nil {
		return nil, err
	}
	return typed.([]Concept), nil
}

func edgesFrom(state *execution.State) ([]Edge, error) {
	value, ok := state.Get(KeyConceptEdges)
	if !ok {
		return nil, fmt.Errorf("state has no %s", KeyConceptEdges)
	}
	if edges, ok := value.([]Edge); ok {
		return edges, nil
	}
	typed, err := state.TypedValue("[]content.Edge", value)
	if err != nil {
		return nil, err
	}
	return typed.([]Edge), nil
}

func splitParagraphs(raw string) []string {
	var out []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n\n") {
		if paragraph = strings.TrimSpace(paragraph); paragraph != "" {
			out = append(out, paragraph)
		}
	}
	return out
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true, "has": true,
	"have": true, "in": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "that": true, "the": true, "this": true, "to": true,
	"was": true, "were": true, "which": true, "with": true,
}

// terms tokenizes text into lowercase candidate concept terms.
func terms(text string) []string {
	var out []string
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		field = strings.Trim(field, "-")
		if len(field) < 4 || stopwords[field] {
			continue
		}
		out = append(out, field)
	}
	return out
}
