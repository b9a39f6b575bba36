package model

import "time"

// User is a registered account. HashedPassword is a bcrypt hash and never
// leaves the service.
type User struct {
	ID             uint
	Email          string
	Name           string
	Lastname       string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserChanges is a partial update; nil fields are left untouched.
type UserChanges struct {
	Email    *string
	Name     *string
	Lastname *string
	IsActive *bool
}

// Empty reports whether no field is set.
func (c UserChanges) Empty() bool {
	return c.Email == nil && c.Name == nil && c.Lastname == nil && c.IsActive == nil
}

// NewUser carries the fields a signup persists.
type NewUser struct {
	Email          string
	Name           string
	Lastname       string
	HashedPassword string
}
