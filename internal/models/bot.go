package models

import "time"

type Bot struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Token       string    `db:"token"`
	Username    string    `db:"username"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	KnowledgeBasesCount int `db:"-"`
}
