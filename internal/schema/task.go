package schema

import (
	"time"

	"service-mesh/internal/model"
)

type TaskCreate struct {
	Title       string `json:"title" validate:"required,min=4,max=20"`
	Description string `json:"description" validate:"required,min=4,max=255"`
	UserID      int64  `json:"user_id" validate:"gte=1"`
}

func (t TaskCreate) NewTask() model.NewTask {
	return model.NewTask{
		UserID:      uint(t.UserID),
		Title:       t.Title,
		Description: t.Description,
	}
}

// TaskUpdate is a partial update. Absent and null fields are unset.
type TaskUpdate struct {
	Title       *string `json:"title" validate:"omitnil,min=4,max=20"`
	Description *string `json:"description" validate:"omitnil,min=4,max=255"`
	UserID      *int64  `json:"user_id" validate:"omitnil,gte=1"`
	Complete    *bool   `json:"complete"`
}

// Changes converts the payload, rejecting it with ErrNoData when no field
// is set.
func (t TaskUpdate) Changes() (model.TaskChanges, error) {
	c := model.TaskChanges{
		Title:       t.Title,
		Description: t.Description,
		Complete:    t.Complete,
	}
	if t.UserID != nil {
		id := uint(*t.UserID)
		c.UserID = &id
	}
	if c.Empty() {
		return c, ErrNoData
	}
	return c, nil
}

type TaskResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTaskResponse(t model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Complete:    t.Complete,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTaskResponses(tasks []model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}
