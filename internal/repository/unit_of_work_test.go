package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-mesh/internal/model"
	"service-mesh/internal/repository"
	"service-mesh/internal/repository/repotest"
)

func TestUnitOfWorkCommits(t *testing.T) {
	db := repotest.NewDB(t, repotest.NewClock(epoch))
	uow := repository.NewUnitOfWork(db)
	ctx := context.Background()

	var id uint
	err := uow.Do(ctx, func(tx repository.Tx) error {
		u, err := tx.Users().Create(ctx, juan())
		if err != nil {
			return err
		}
		id = u.ID
		return nil
	})
	require.NoError(t, err)

	u, err := repository.NewUserRepository(db).GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, u)
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db := repotest.NewDB(t, repotest.NewClock(epoch))
	uow := repository.NewUnitOfWork(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := uow.Do(ctx, func(tx repository.Tx) error {
		if _, err := tx.Tasks().Create(ctx, model.NewTask{UserID: 3, Title: "Lost", Description: "never seen"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	tasks, err := repository.NewTaskRepository(db).ListByUser(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, tasks)
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	db := repotest.NewDB(t, repotest.NewClock(epoch))
	uow := repository.NewUnitOfWork(db)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = uow.Do(ctx, func(tx repository.Tx) error {
			if _, err := tx.Users().Create(ctx, juan()); err != nil {
				return err
			}
			panic("handler bug")
		})
	})

	ok, err := repository.NewUserRepository(db).Exists(ctx, "juan@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
