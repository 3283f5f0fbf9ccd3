package sqlstore

import (
	"context"
	"fmt"

	"catalog-sync/core/database"

	"gorm.io/gorm"
)

// TableIssue lists the columns a table is missing compared to its model.
type TableIssue struct {
	Table   string
	Missing []string
}

// CheckSchema compares every model against the live table columns and returns
// the tables that lack columns. A missing table reports all of its columns.
func (s *Store) CheckSchema(ctx context.Context) ([]TableIssue, error) {
	var issues []TableIssue
	db := s.db.WithContext(ctx)
	for _, model := range Models() {
		stmt := db.Session(&gorm.Session{NewDB: true}).Statement
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		missing, err := database.MissingColumns(db, stmt.Schema.Table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			issues = append(issues, TableIssue{Table: stmt.Schema.Table, Missing: missing})
		}
	}
	return issues, nil
}
