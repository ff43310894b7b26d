// Package approval defines the three-stage, human-gated state machine that
// sits above the workflow scheduler. The process holding a record is never
// blocked while a stage awaits review; the record simply will not advance
// until a reviewer decision arrives, potentially from a different process.
package approval
