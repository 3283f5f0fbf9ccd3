// Package sqlstore implements store.Store on top of GORM.
//
// Entities live in one table per kind, ordered by an auto-increment seq column so
// "first in insertion order" is a plain ORDER BY. The external identifier registry is
// the external_identifiers table, whose unique index on (kind, external_id, source)
// keeps every pair owned by a single local id; Record inserts with ON CONFLICT DO
// NOTHING so repeated imports are idempotent.
package sqlstore
