package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"service-mesh/internal/password"
	"service-mesh/internal/repository"
	"service-mesh/internal/repository/repotest"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	clock  *repotest.Clock
	hasher *password.Hasher
	users  *UserService
	tasks  *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := repotest.NewClock(epoch)
	db := repotest.NewDB(t, clock)
	hasher, err := password.NewHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	uow := repository.NewUnitOfWork(db)
	return &fixture{
		clock:  clock,
		hasher: hasher,
		users:  NewUserService(uow, repository.NewUserRepository(db), hasher),
		tasks:  NewTaskService(uow, repository.NewTaskRepository(db)),
	}
}
