// Package lmwkg is the coordination layer of the course knowledge-graph
// pipeline. It wires the service registry, the dependency-ordering scheduler
// and the three-stage human approval workflow into one facade: callers
// register pipeline services (or use the built-in content-processing and
// learner-personalization sets), run whole subsystems directly, or drive a
// course through the gated knowledge-graph -> course-structure -> final-review
// approval flow with a persisted state snapshot at every stage boundary.
package lmwkg
