// Package orchestrator implements the workflow scheduler: it computes a
// deterministic topological order over registered service descriptors and
// executes a plan strictly sequentially, propagating the shared workflow
// state and halting on the first failure.
package orchestrator
