package main

import "time"

type user struct {
	ID                int       `db:"id" json:"id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      []byte    `db:"password_hash" json:"-"`
	EmailConfirmed    bool      `db:"email_confirmed" json:"email_confirmed"`
	ConfirmationToken string    `db:"confirmation_token" json:"-"`
	Version           int       `db:"version" json:"-"`
}

type task struct {
	ID        int        `db:"id" json:"id"`
	CreatedAt time.Time  `db:"created_at" json:"-"`
	UserID    int        `db:"user_id" json:"-"`
	Content   string     `db:"content" json:"content"`
	Done      bool       `db:"done" json:"done"`
	Priority  string     `db:"priority" json:"priority"`
	DueDate   *time.Time `db:"due_date" json:"due_date"`
	Version   int        `db:"version" json:"-"`
}

// session is the proof of authentication carried through a request.
// It is derived from a verified token, never from ambient state.
type session struct {
	UserID    int
	TokenID   string
	ExpiresAt time.Time
}
