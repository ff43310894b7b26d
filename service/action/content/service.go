package content

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Deepesh-vendoti/LMW-KG-sub000/internal/clock"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/model/types"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/registry"
	"github.com/Deepesh-vendoti/LMW-KG-sub000/runtime/execution"
)

const (
	maxChunkRunes = 800
	maxConcepts   = 12
)

// initialize derives the course title from the first non-empty content line.
func initialize(_ context.Context, state *execution.State) (*execution.State, error) {
	raw, _ := state.GetString(KeyRawContent)
	title := ""
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(strings.TrimLeft(line, "# ")); line != "" {
			title = line
			break
		}
	}
	if title == "" {
		return nil, fmt.Errorf("content has no usable title line")
	}
	if runes := []rune(title); len(runes) > 80 {
		title = string(runes[:80])
	}
	state.Set(KeyCourseTitle, title)
	return state, nil
}

// chunk splits raw content into paragraph-aligned chunks, merging small
// paragraphs until the rune budget is reached.
func chunk(_ context.Context, state *execution.State) (*execution.State, error) {
	raw, _ := state.GetString(KeyRawContent)
	paragraphs := splitParagraphs(raw)
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("content is empty")
	}
	var chunks []Chunk
	current := ""
	flush := func() {
		if current == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Ordinal: len(chunks),
			Text:    current,
			Tokens:  len(strings.Fields(current)),
		})
		current = ""
	}
	for _, paragraph := range paragraphs {
		if current != "" && len([]rune(current))+len([]rune(paragraph)) > maxChunkRunes {
			flush()
		}
		if current != "" {
			current += "\n\n"
		}
		current += paragraph
	}
	flush()
	state.Set(KeyChunks, chunks)
	return state, nil
}

// extractConcepts builds graph nodes from term frequency across chunks and
// edges from in-chunk co-occurrence.
func extractConcepts(_ context.Context, state *execution.State) (*execution.State, error) {
	chunks, err := chunksFrom(state)
	if err != nil {
		return nil, err
	}
	frequency := map[string]int{}
	occurrence := map[string][]int{}
	order := map[string]int{}
	for _, c := range chunks {
		seen := map[string]bool{}
		for _, term := range terms(c.Text) {
			frequency[term]++
			if _, ok := order[term]; !ok {
				order[term] = len(order)
			}
			if !seen[term] {
				occurrence[term] = append(occurrence[term], c.Ordinal)
				seen[term] = true
			}
		}
	}
	names := make([]string, 0, len(frequency))
	for name := range frequency {
		names = append(names, name)
	}
	// Highest frequency first; first occurrence breaks ties for determinism.
	sort.Slice(names, func(i, j int) bool {
		if frequency[names[i]] != frequency[names[j]] {
			return frequency[names[i]] > frequency[names[j]]
		}
		return order[names[i]] < order[names[j]]
	})
	if len(names) > maxConcepts {
		names = names[:maxConcepts]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no concepts extracted from %d chunks", len(chunks))
	}
	concepts := make([]Concept, 0, len(names))
	selected := map[string]bool{}
	for _, name := range names {
		selected[name] = true
		concepts = append(concepts, Concept{Name: name, Weight: frequency[name], Chunks: occurrence[name]})
	}

	edgeWeight := map[[2]string]int{}
	for _, c := range chunks {
		var present []string
		seen := map[string]bool{}
		for _, term := range terms(c.Text) {
			if selected[term] && !seen[term] {
				present = append(present, term)
				seen[term] = true
			}
		}
		sort.Strings(present)
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				edgeWeight[[2]string{present[i], present[j]}]++
			}
		}
	}
	pairs := make([][2]string, 0, len(edgeWeight))
	for pair := range edgeWeight {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	edges := make([]Edge, 0, len(pairs))
	for _, pair := range pairs {
		edges = append(edges, Edge{Source: pair[0], Target: pair[1], Weight: edgeWeight[pair]})
	}

	state.Set(KeyConcepts, concepts)
	state.Set(KeyConceptEdges, edges)
	return state, nil
}

// buildTree arranges concepts into a learning tree: the heaviest concept is
// the root and every other concept attaches to the placed concept it shares
// the strongest edge with.
func buildTree(_ context.Context, state *execution.State) (*execution.State, error) {
	concepts, err := conceptsFrom(state)
	if err != nil {
		return nil, err
	}
	edges, err := edgesFrom(state)
	if err != nil {
		return nil, err
	}
	if len(concepts) == 0 {
		return nil, fmt.Errorf("no concepts to arrange")
	}
	weight := func(a, b string) int {
		for _, e := range edges {
			if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
				return e.Weight
			}
		}
		return 0
	}
	root := &TreeNode{Concept: concepts[0].Name}
	placed := []*TreeNode{root}
	for _, concept := range concepts[1:] {
		parent := root
		best := -1
		for _, candidate := range placed {
			if w := weight(candidate.Concept, concept.Name); w > best {
				best = w
				parent = candidate
			}
		}
		node := &TreeNode{Concept: concept.Name}
		parent.Children = append(parent.Children, node)
		placed = append(placed, node)
	}
	state.Set(KeyLearningTree, root)
	return state, nil
}

// publish produces the final course summary once every upstream artifact is
// in place.
func publish(_ context.Context, state *execution.State) (*execution.State, error) {
	title, _ := state.GetString(KeyCourseTitle)
	chunks, err := chunksFrom(state)
	if err != nil {
		return nil, err
	}
	concepts, err := conceptsFrom(state)
	if err != nil {
		return nil, err
	}
	state.Set(KeyPublished, PublishedCourse{
		CourseID:    state.CourseID,
		Title:       title,
		Chunks:      len(chunks),
		Concepts:    len(concepts),
		PublishedAt: clock.Now(),
	})
	return state, nil
}

// Services returns the content-processing descriptors in registration order.
func Services() []*model.Service {
	return []*model.Service{
		{
			ID:        ServiceInitializer,
			Subsystem: model.SubsystemContent,
			Requires:  []string{KeyRawContent},
			Produces:  []string{KeyCourseTitle},
			Timeout:   30 * time.Second,
			Handler:   types.HandlerFunc(initialize),
		},
		{
			ID:        ServiceChunker,
			Subsystem: model.SubsystemContent,
			DependsOn: []string{ServiceInitializer},
			Requires:  []string{KeyRawContent},
			Produces:  []string{KeyChunks},
			Timeout:   time.Minute,
			Handler:   types.HandlerFunc(chunk),
		},
		{
			ID:        ServiceConceptExtractor,
			Subsystem: model.SubsystemContent,
			DependsOn: []string{ServiceChunker},
			Requires:  []string{KeyChunks},
			Produces:  []string{KeyConcepts, KeyConceptEdges},
			Timeout:   2 * time.Minute,
			Handler:   types.HandlerFunc(extractConcepts),
		},
		{
			ID:        ServiceTreeBuilder,
			Subsystem: model.SubsystemContent,
			DependsOn: []string{ServiceConceptExtractor},
			Requires:  []string{KeyConcepts, KeyConceptEdges},
			Produces:  []string{KeyLearningTree},
			Handler:   types.HandlerFunc(buildTree),
		},
		{
			ID:        ServicePublisher,
			Subsystem: model.SubsystemContent,
			DependsOn: []string{ServiceTreeBuilder},
			Requires:  []string{KeyCourseTitle, KeyChunks, KeyConcepts, KeyLearningTree},
			Produces:  []string{KeyPublished},
			Handler:   types.HandlerFunc(publish),
		},
	}
}

// Register adds all content-processing services to the registry.
func Register(reg *registry.Service) error {
	for _, svc := range Services() {
		if err := reg.Register(svc); err != nil {
			return err
		}
	}
	return nil
}

// Handlers exposes the handlers by service id for manifest-driven wiring.
func Handlers() map[string]types.Handler {
	handlers := make(map[string]types.Handler)
	for _, svc := range Services() {
		handlers[svc.ID] = svc.Handler
	}
	return handlers
}
