package model

import "time"

// Task is a single to-do item owned by a user. UserID is not checked
// against the users service.
type Task struct {
	ID          uint
	UserID      uint
	Title       string
	Description string
	Complete    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskChanges is a partial update; nil fields are left untouched.
type TaskChanges struct {
	Title       *string
	Description *string
	UserID      *uint
	Complete    *bool
}

// Empty reports whether no field is set.
func (c TaskChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.UserID == nil && c.Complete == nil
}

// NewTask carries the fields a task creation persists.
type NewTask struct {
	UserID      uint
	Title       string
	Description string
}
