// Package imports exposes snapshot reconciliation as a service and over HTTP.
//
// The Service loads a snapshot by name, runs it through the reconcile engine,
// records the outcome as a store.ImportRun (with the full summary as JSON) and
// reports it to the Prometheus collectors. Runs against one store are
// serialized: resolution looks up before it inserts, so two concurrent runs
// could insert the same entity twice.
//
// # Routes
//
//	POST   /imports/:name?scope=cropzones|catalog&reimport_zones=true
//	GET    /imports?limit=20
//	DELETE /store/:kind
package imports
