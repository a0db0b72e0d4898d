package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema holds the DDL for the registry. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS task_sets (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL,
		scale        INTEGER NOT NULL DEFAULT 1,
		tasks        TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_task_sets_content_hash ON task_sets(content_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_task_sets_name ON task_sets(name)`,
}

// alterStatements add columns to databases created by older releases.
// SQLite has no ADD COLUMN IF NOT EXISTS, so each one is checked first.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string
}{
	{
		table:    "task_sets",
		column:   "source",
		alterSQL: "ALTER TABLE task_sets ADD COLUMN source TEXT NOT NULL DEFAULT ''",
	},
	{
		table:    "task_sets",
		column:   "task_count",
		alterSQL: "ALTER TABLE task_sets ADD COLUMN task_count INTEGER NOT NULL DEFAULT 0",
		indexSQL: "CREATE INDEX IF NOT EXISTS idx_task_sets_task_count ON task_sets(task_count)",
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}
	return nil
}

func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	exists, err := hasColumn(ctx, db, table, column)
	if err != nil || exists {
		return err
	}
	_, err = db.ExecContext(ctx, alterSQL)
	return err
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, rows.Err()
}
