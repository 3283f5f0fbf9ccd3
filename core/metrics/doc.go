// Package metrics exposes Prometheus collectors for import runs.
//
// Metrics implements reconcile.Observer, so passing it to reconcile.WithObserver
// counts every resolution by kind and outcome. The HTTP server mounts Handler on
// /metrics.
package metrics
