package service

import (
	"context"

	"github.com/juju/errors"

	"service-mesh/internal/model"
	"service-mesh/internal/repository"
	"service-mesh/internal/schema"
)

const msgTaskNotFound = "Task not found"

// TasksResult is either TasksFound or NoTasksForUser.
type TasksResult interface {
	tasksResult()
}

// TasksFound holds at least one task.
type TasksFound struct {
	Tasks []model.Task
}

// NoTasksForUser reports that the user owns no tasks.
type NoTasksForUser struct {
	UserID uint
}

func (TasksFound) tasksResult()     {}
func (NoTasksForUser) tasksResult() {}

// TaskService wraps task-related business logic. Writes go through the unit
// of work on the primary pool, reads through reads, which may sit on a
// replica and lag behind.
type TaskService struct {
	uow   *repository.UnitOfWork
	reads *repository.TaskRepository
}

func NewTaskService(uow *repository.UnitOfWork, reads *repository.TaskRepository) *TaskService {
	return &TaskService{uow: uow, reads: reads}
}

// CreateTask stores a task for in.UserID without asking the users service
// whether that user exists.
func (s *TaskService) CreateTask(ctx context.Context, in model.NewTask) (*model.Task, error) {
	var task *model.Task
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		var err error
		task, err = tx.Tasks().Create(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("created task %d for user %d", task.ID, task.UserID)
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	task, err := s.reads.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if task == nil {
		return nil, errors.NewNotFound(nil, msgTaskNotFound)
	}
	return task, nil
}

func (s *TaskService) ListByUser(ctx context.Context, userID uint) (TasksResult, error) {
	tasks, err := s.reads.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if tasks == nil {
		return NoTasksForUser{UserID: userID}, nil
	}
	return TasksFound{Tasks: tasks}, nil
}

// UpdateTask applies a partial update to an existing task.
func (s *TaskService) UpdateTask(ctx context.Context, id uint, changes model.TaskChanges) (*model.Task, error) {
	if changes.Empty() {
		return nil, schema.ErrNoData
	}

	var updated *model.Task
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		tasks := tx.Tasks()
		current, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return errors.NewNotFound(nil, msgTaskNotFound)
		}
		updated, err = tasks.Update(ctx, id, changes)
		if err != nil {
			return err
		}
		if updated == nil {
			return errors.NewNotFound(nil, msgTaskNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, id uint) error {
	return s.uow.Do(ctx, func(tx repository.Tx) error {
		removed, err := tx.Tasks().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !removed {
			return errors.NewNotFound(nil, msgTaskNotFound)
		}
		return nil
	})
}
