// Package database opens GORM connections and inspects table schemas.
//
// # Connect
//
// Connect supports sqlite (the default, a local file or ":memory:"), mysql and
// postgres. The "memory" driver has no dialector; callers select the in-memory
// store instead of opening a connection.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns back the check command, which verifies that the
// store tables carry the columns the models expect.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "management_zones", []string{"id", "field_id"})
package database
