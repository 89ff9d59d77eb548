package main

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know
	// out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func openDB(cfg config) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.db.driver, cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	switch cfg.db.driver {
	case "sqlite":
		// A single connection keeps in-memory databases coherent and lets
		// SQLite serialize writers itself.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, err
		}
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, err
		}
	default:
		db.SetMaxOpenConns(cfg.db.maxOpenConnections)
		db.SetMaxIdleConns(cfg.db.maxIdleConnections)
		db.SetConnMaxIdleTime(cfg.db.maxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type storage struct {
	db *sqlx.DB
}

func newStorage(db *sqlx.DB) *storage {
	return &storage{
		db: db,
	}
}

const userColumns = `id, created_at, email, password_hash, email_confirmed, confirmation_token, version`

func (s *storage) getUser(query string, args ...any) (*user, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var u user
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).StructScan(&u)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByEmail(email string) (*user, error) {
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = ?`
	return s.getUser(query, email)
}

func (s *storage) getUserByID(id int) (*user, error) {
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = ?`
	return s.getUser(query, id)
}

func (s *storage) getUserByConfirmationToken(token string) (*user, error) {
	if token == "" {
		return nil, nil
	}
	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE confirmation_token = ?`
	return s.getUser(query, token)
}

func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (created_at, email, password_hash, email_confirmed, confirmation_token, version)
			  VALUES (?, ?, ?, ?, ?, ?)
			  RETURNING id`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	u.Version = 1
	row := s.db.QueryRowxContext(ctx, s.db.Rebind(query),
		u.CreatedAt, u.Email, u.PasswordHash, u.EmailConfirmed, u.ConfirmationToken, u.Version)
	return row.Scan(&u.ID)
}

func (s *storage) updateUser(u *user) error {
	query := `UPDATE users
			  SET email = ?, password_hash = ?, email_confirmed = ?, confirmation_token = ?, version = version + 1
			  WHERE id = ? AND version = ?
			  RETURNING version`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(query),
		u.Email, u.PasswordHash, u.EmailConfirmed, u.ConfirmationToken, u.ID, u.Version)
	return row.Scan(&u.Version)
}

func (s *storage) deleteUser(u *user) error {
	query := `DELETE FROM users
			  WHERE id = ?`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), u.ID)
	return err
}

// taskFilter narrows a listing within one owner's tasks. Zero values and
// "all" mean unconstrained. Filters compose with AND.
type taskFilter struct {
	status   string // "all", "completed" or "pending"
	priority string // "all" or an exact priority value
	search   string // case-insensitive substring of content
}

const taskColumns = `id, created_at, user_id, content, done, priority, due_date, version`

func (s *storage) getTaskByID(id int) (*task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE id = ?`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var t task
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), id).StructScan(&t)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

func (s *storage) getTasksByOwner(ownerID int, f taskFilter) ([]task, error) {
	query := `SELECT ` + taskColumns + `
			  FROM tasks
			  WHERE user_id = ?`
	args := []any{ownerID}

	switch f.status {
	case "completed":
		query += ` AND done = ?`
		args = append(args, true)
	case "pending":
		query += ` AND done = ?`
		args = append(args, false)
	}
	if f.priority != "" && f.priority != "all" {
		query += ` AND priority = ?`
		args = append(args, f.priority)
	}
	if f.search != "" {
		query += ` AND LOWER(content) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.search)+"%")
	}
	query += ` ORDER BY id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		if err := rows.StructScan(&t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *storage) insertTask(t *task) error {
	query := `INSERT INTO tasks (created_at, user_id, content, done, priority, due_date, version)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  RETURNING id`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.CreatedAt = time.Now().UTC().Truncate(time.Second)
	t.Version = 1
	row := s.db.QueryRowxContext(ctx, s.db.Rebind(query),
		t.CreatedAt, t.UserID, t.Content, t.Done, t.Priority, t.DueDate, t.Version)
	return row.Scan(&t.ID)
}

func (s *storage) updateTask(t *task) error {
	query := `UPDATE tasks
			  SET content = ?, done = ?, priority = ?, due_date = ?, version = version + 1
			  WHERE id = ? AND version = ?
			  RETURNING version`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(query),
		t.Content, t.Done, t.Priority, t.DueDate, t.ID, t.Version)
	return row.Scan(&t.Version)
}

func (s *storage) deleteTask(t *task) error {
	query := `DELETE FROM tasks
			  WHERE id = ?`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(query), t.ID)
	return err
}

func (s *storage) countTasks() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var n int
	err := s.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}
