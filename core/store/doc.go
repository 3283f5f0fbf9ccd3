// Package store defines the local entity models and the persistence contracts the
// reconciler works against.
//
// # Models
//
// OperatingUnit, Farm, Field, Crop and ManagementZone each carry a generated UUID
// local id. Parent links are local ids too; uuid.Nil means the link is absent.
//
// # Contracts
//
//   - Store: insert, find by local id / external identifiers / name, list, clear.
//   - Registry: the append-only mapping of foreign identifiers to local ids.
//   - RunLog: the history of import runs.
//
// Two implementations exist: core/store/memory for tests and one-shot runs, and
// core/store/sqlstore backed by GORM (sqlite, mysql, postgres).
// core/store/storetest holds the behaviour both must share.
package store
