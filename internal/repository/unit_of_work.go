package repository

import (
	"context"

	"gorm.io/gorm"
)

// ErrDuplicateKey matches errors caused by a unique index violation.
var ErrDuplicateKey = gorm.ErrDuplicatedKey

// UnitOfWork runs a function inside one database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Tx exposes repositories bound to the running transaction.
type Tx struct {
	db *gorm.DB
}

func (t Tx) Users() *UserRepository { return NewUserRepository(t.db) }
func (t Tx) Tasks() *TaskRepository { return NewTaskRepository(t.db) }

// Do commits when fn returns nil and rolls back when it returns an error or
// panics; the panic is re-raised after the rollback. The connection goes
// back to the pool on every path.
func (u *UnitOfWork) Do(ctx context.Context, fn func(tx Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Tx{db: tx})
	})
}
