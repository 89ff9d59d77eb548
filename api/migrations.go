package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The same logical schema is declared per driver: serial ids and BYTEA on
// PostgreSQL, autoincrement ids and BLOB on SQLite. Deleting a user cascades
// to their tasks.
var schemaStatements = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash BYTEA NOT NULL,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			confirmation_token TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			priority TEXT NOT NULL DEFAULT 'Baja',
			due_date TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_confirmation_token ON users(confirmation_token)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash BLOB NOT NULL,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			confirmation_token TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			priority TEXT NOT NULL DEFAULT 'Baja',
			due_date TIMESTAMP,
			version INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_confirmation_token ON users(confirmation_token)`,
	},
}

func migrate(db *sqlx.DB, driver string) error {
	statements, ok := schemaStatements[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema statement: %w", err)
		}
	}
	return nil
}
