// Package registry keeps the descriptors of all pipeline services and
// validates their dependency graph before anything is scheduled.
package registry
