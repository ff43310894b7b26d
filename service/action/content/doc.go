// Package content implements the content-processing services that turn raw
// course material into a knowledge graph: chunking, concept extraction,
// learning-tree construction and final publication.
package content
