// Package execution defines the shared workflow state that a scheduled run
// threads through its services: a typed reserved core (course, learner,
// per-service statuses, failure details) plus an open map for
// service-produced payloads.
package execution
