package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-mesh/internal/model"
	"service-mesh/internal/repository"
	"service-mesh/internal/repository/repotest"
)

func newTaskRepo(t *testing.T) (*repository.TaskRepository, *repotest.Clock) {
	clock := repotest.NewClock(epoch)
	return repository.NewTaskRepository(repotest.NewDB(t, clock)), clock
}

func TestTaskCreateRoundTrip(t *testing.T) {
	repo, _ := newTaskRepo(t)
	ctx := context.Background()

	in := model.NewTask{UserID: 99, Title: "Groceries", Description: "Milk and bread"}
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.Complete)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, in.UserID, got.UserID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Description, got.Description)
	assert.True(t, got.CreatedAt.Equal(epoch))
}

func TestTaskListByUser(t *testing.T) {
	repo, _ := newTaskRepo(t)
	ctx := context.Background()

	for _, in := range []model.NewTask{
		{UserID: 1, Title: "First", Description: "one one"},
		{UserID: 2, Title: "Other", Description: "two two"},
		{UserID: 1, Title: "Second", Description: "one two"},
	} {
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	tasks, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, "Second", tasks[1].Title)
	for _, task := range tasks {
		assert.Equal(t, uint(1), task.UserID)
	}

	none, err := repo.ListByUser(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTaskPartialUpdate(t *testing.T) {
	repo, clock := newTaskRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, model.NewTask{UserID: 1, Title: "Write", Description: "the report"})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	done := true
	updated, err := repo.Update(ctx, task.ID, model.TaskChanges{Complete: &done})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.True(t, updated.Complete)
	assert.Equal(t, task.Title, updated.Title)
	assert.Equal(t, task.Description, updated.Description)
	assert.Equal(t, task.UserID, updated.UserID)
	assert.True(t, updated.CreatedAt.Equal(task.CreatedAt))
	assert.True(t, updated.UpdatedAt.Equal(epoch.Add(time.Hour)), "updated_at %v", updated.UpdatedAt)
}

func TestTaskUpdateMissing(t *testing.T) {
	repo, _ := newTaskRepo(t)
	title := "Ghost"

	got, err := repo.Update(context.Background(), 5, model.TaskChanges{Title: &title})
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskDelete(t *testing.T) {
	repo, _ := newTaskRepo(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, model.NewTask{UserID: 1, Title: "Drop", Description: "me soon"})
	require.NoError(t, err)

	removed, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
