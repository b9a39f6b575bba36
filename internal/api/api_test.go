package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"service-mesh/internal/password"
	"service-mesh/internal/repository"
	"service-mesh/internal/repository/repotest"
	"service-mesh/internal/service"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	return repotest.NewDB(t, repotest.NewClock(epoch))
}

func dbPinger(db *gorm.DB) Pinger {
	return func(ctx context.Context) error { return repository.Ping(ctx, db) }
}

func usersHandler(t *testing.T, db *gorm.DB, opts Options) http.Handler {
	t.Helper()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	users := service.NewUserService(repository.NewUnitOfWork(db), repository.NewUserRepository(db), hasher)
	if opts.Ping == nil {
		opts.Ping = dbPinger(db)
	}
	if opts.Name == "" {
		opts.Name = "Users"
	}
	return NewUsersHandler(users, opts)
}

func tasksHandler(t *testing.T, db *gorm.DB, opts Options) http.Handler {
	t.Helper()
	tasks := service.NewTaskService(repository.NewUnitOfWork(db), repository.NewTaskRepository(db))
	if opts.Ping == nil {
		opts.Ping = dbPinger(db)
	}
	if opts.Name == "" {
		opts.Name = "Tasks"
	}
	return NewTasksHandler(tasks, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
