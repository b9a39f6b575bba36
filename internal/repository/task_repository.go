package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"service-mesh/internal/model"
)

type taskRow struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	UserID      uint   `gorm:"not null;index"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"size:255;not null"`
	Complete    bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Complete:    r.Complete,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// MigrateTasks creates or updates the tasks table.
func MigrateTasks(db *gorm.DB) error {
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return fmt.Errorf("migrate tasks: %w", err)
	}
	return nil
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, in model.NewTask) (*model.Task, error) {
	row := taskRow{
		UserID:      in.UserID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	t, err := r.GetByID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("task %d vanished after insert", row.ID)
	}
	return t, nil
}

// GetByID returns nil without error when no task has the id.
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).Take(&row, id).Error
	switch {
	case err == nil:
		t := row.toModel()
		return &t, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find task %d: %w", id, err)
	}
}

// ListByUser returns the user's tasks in id order, or nil when there are
// none.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uint) ([]model.Task, error) {
	var rows []taskRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks of user %d: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toModel())
	}
	return tasks, nil
}

// Update applies the set fields of changes and returns the row as stored
// afterwards, or nil if it does not exist. Empty changes only read.
func (r *TaskRepository) Update(ctx context.Context, id uint, changes model.TaskChanges) (*model.Task, error) {
	if changes.Empty() {
		return r.GetByID(ctx, id)
	}
	values := make(map[string]interface{}, 4)
	if changes.Title != nil {
		values["title"] = *changes.Title
	}
	if changes.Description != nil {
		values["description"] = *changes.Description
	}
	if changes.UserID != nil {
		values["user_id"] = *changes.UserID
	}
	if changes.Complete != nil {
		values["complete"] = *changes.Complete
	}
	if err := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Updates(values).Error; err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// Delete reports whether a row was removed.
func (r *TaskRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&taskRow{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete task %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
