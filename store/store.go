package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"go_todo/task"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when no task has the requested ID.
var ErrNotFound = errors.New("task not found")

// Store persists tasks in a single SQLite table.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes ordered
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListAll returns every task in insertion order.
func (s *Store) ListAll(ctx context.Context) ([]task.Task, error) {
	return s.query(ctx, `SELECT id, item, completed, date FROM todos ORDER BY id`)
}

// Get returns a single task.
func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, item, completed, date FROM todos WHERE id = ?`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return t, nil
}

// Insert adds an incomplete task and returns its ID.
func (s *Store) Insert(ctx context.Context, description, due string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (item, completed, date) VALUES (?, 0, ?)`, description, due)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read task id: %w", err)
	}
	return id, nil
}

// SetCompleted sets the completion flag of a task.
func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return requireRow(res, id)
}

// Toggle flips the completion flag and returns the updated task.
func (s *Store) Toggle(ctx context.Context, id int64) (task.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET completed = NOT completed WHERE id = ?`, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to toggle task %d: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return task.Task{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return requireRow(res, id)
}

// Search returns tasks whose description contains text, ignoring case. When
// nothing matches, every task is returned.
func (s *Store) Search(ctx context.Context, text string) ([]task.Task, error) {
	pattern := "%" + strings.ToLower(text) + "%"
	tasks, err := s.query(ctx,
		`SELECT id, item, completed, date FROM todos WHERE LOWER(item) LIKE ? ORDER BY id`, pattern)
	if err != nil {
		return nil, err
	}
	if len(tasks) > 0 {
		return tasks, nil
	}
	return s.ListAll(ctx)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTask is the one place the loosely typed completed column becomes a bool.
func scanTask(row scanner) (task.Task, error) {
	var (
		t         task.Task
		completed sql.NullBool
	)
	if err := row.Scan(&t.ID, &t.Description, &completed, &t.Due); err != nil {
		return task.Task{}, err
	}
	t.Completed = completed.Valid && completed.Bool
	return t, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
