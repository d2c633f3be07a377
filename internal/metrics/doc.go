// Package metrics provides Prometheus metrics for synchronization runs.
//
// The vectors are registered with the default registry. The CLI writes
// them to a node-exporter textfile after each run.
package metrics
