// Package model defines the pipeline service descriptor and its subsystem
// grouping. A descriptor declares what a service needs and produces; the
// behavior itself stays opaque to the coordination layer.
package model
