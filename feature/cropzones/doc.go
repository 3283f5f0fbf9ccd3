// Package cropzones resolves snapshot references into denormalized crop zone rows.
//
// BuildTree walks every crop zone of a snapshot and follows its reference ids to
// the crop, field, farm and grower, producing one flat Row per zone. Only
// reference-id lookups inside the snapshot are used; the local store is never
// consulted. A broken link (a parent reference that is absent or points at nothing)
// leaves that link, and everything reached through it, nil or empty.
//
// Filter narrows rows by grower, farm, field or crop reference id and by crop
// season, and optionally by an expr-lang boolean expression. GroupRows orders rows
// by grower, farm, field and crop name and splits them per (grower, farm).
//
// # Routes
//
//   - GET /snapshots
//   - GET /snapshots/:name/cropzones?grower=&farm=&field=&crop=&season=&where=
package cropzones
