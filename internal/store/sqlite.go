package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/rtsched/pkg/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by DeleteTaskSet for an unknown id.
var ErrNotFound = errors.New("not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// timeFormat is fixed-width so that created_at sorts chronologically as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const taskSetColumns = `id, name, content_hash, scale, tasks, source, created_at`

func (s *SQLiteStore) CreateTaskSet(ctx context.Context, ts *model.TaskSetRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "task_sets", "id", ts.ID)

	tasksJSON, err := json.Marshal(ts.Tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO task_sets (id, name, content_hash, scale, tasks, source, task_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.ID, ts.Name, ts.ContentHash, ts.Scale, string(tasksJSON), ts.Source, len(ts.Tasks),
		ts.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert task set %s: %w", ts.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetTaskSet(ctx context.Context, id string) (*model.TaskSetRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "task_sets", "id", id)
	row := s.db.QueryRowContext(ctx, `SELECT `+taskSetColumns+` FROM task_sets WHERE id = ?`, id)
	return s.scanTaskSet(row)
}

func (s *SQLiteStore) GetTaskSetByHash(ctx context.Context, hash string) (*model.TaskSetRecord, error) {
	s.logger.Debug("sql", "op", "select_by_hash", "table", "task_sets", "hash", hash)
	row := s.db.QueryRowContext(ctx, `SELECT `+taskSetColumns+` FROM task_sets WHERE content_hash = ?`, hash)
	return s.scanTaskSet(row)
}

// ListTaskSets returns one page of task sets, newest first, and the total
// number matching opts.Name as a prefix.
func (s *SQLiteStore) ListTaskSets(ctx context.Context, opts model.ListOptions) ([]*model.TaskSetRecord, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "list", "table", "task_sets", "limit", opts.Limit, "offset", opts.Offset, "name", opts.Name)

	where, args := "", []any{}
	if opts.Name != "" {
		where = ` WHERE name LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(opts.Name)+"%")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_sets`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskSetColumns+` FROM task_sets`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sets []*model.TaskSetRecord
	for rows.Next() {
		ts, err := s.scanTaskSet(rows)
		if err != nil {
			return nil, 0, err
		}
		sets = append(sets, ts)
	}
	return sets, total, rows.Err()
}

func (s *SQLiteStore) DeleteTaskSet(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "task_sets", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM task_sets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task set %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTaskSet returns nil, nil when the row does not exist.
func (s *SQLiteStore) scanTaskSet(row scanner) (*model.TaskSetRecord, error) {
	var ts model.TaskSetRecord
	var tasksJSON, createdAt string

	err := row.Scan(&ts.ID, &ts.Name, &ts.ContentHash, &ts.Scale, &tasksJSON, &ts.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tasksJSON), &ts.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks of %s: %w", ts.ID, err)
	}
	ts.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return &ts, nil
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
