// Package app assembles one service process: pools, migrations, metrics,
// the pool keepalive job and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"service-mesh/internal/api"
	"service-mesh/internal/config"
	"service-mesh/internal/metrics"
	"service-mesh/internal/password"
	"service-mesh/internal/repository"
	"service-mesh/internal/service"
)

var logger = loggo.GetLogger("servicemesh.app")

const shutdownTimeout = 10 * time.Second

// Service describes one of the HTTP services.
type Service struct {
	// Name labels metrics and logs, e.g. "users".
	Name string
	// Title appears in the welcome message.
	Title   string
	Migrate func(db *gorm.DB) error
	Routes  func(cfg config.Config, pools *repository.Pools, opts api.Options) (http.Handler, error)
}

var Users = Service{
	Name:    "users",
	Title:   "Users",
	Migrate: repository.MigrateUsers,
	Routes: func(cfg config.Config, pools *repository.Pools, opts api.Options) (http.Handler, error) {
		hasher, err := password.NewHasher(cfg.BcryptCost)
		if err != nil {
			return nil, errors.Trace(err)
		}
		users := service.NewUserService(
			repository.NewUnitOfWork(pools.Primary),
			repository.NewUserRepository(pools.Primary),
			hasher,
		)
		return api.NewUsersHandler(users, opts), nil
	},
}

var Tasks = Service{
	Name:    "tasks",
	Title:   "Tasks",
	Migrate: repository.MigrateTasks,
	Routes: func(_ config.Config, pools *repository.Pools, opts api.Options) (http.Handler, error) {
		tasks := service.NewTaskService(
			repository.NewUnitOfWork(pools.Primary),
			repository.NewTaskRepository(pools.Read),
		)
		return api.NewTasksHandler(tasks, opts), nil
	},
}

// Instance is a built service ready to serve.
type Instance struct {
	Handler   http.Handler
	Registry  *prometheus.Registry
	Monitor   *service.PoolMonitor
	scheduler *service.SchedulerService
}

// Build migrates the schema on the primary pool and wires svc on top of
// pools.
func Build(cfg config.Config, svc Service, pools *repository.Pools) (*Instance, error) {
	if err := svc.Migrate(pools.Primary); err != nil {
		return nil, errors.Annotate(err, "migrating schema")
	}

	reg, err := metrics.NewRegistry()
	if err != nil {
		return nil, errors.Trace(err)
	}
	httpMetrics, err := metrics.NewHTTP(reg, svc.Name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	up, err := metrics.NewPoolUp(reg)
	if err != nil {
		return nil, errors.Trace(err)
	}

	named := map[string]*gorm.DB{"primary": pools.Primary}
	if pools.HasReplica() {
		named["read"] = pools.Read
	}
	pingers := make(map[string]service.Pinger, len(named))
	for name, db := range named {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Trace(err)
		}
		if err := metrics.RegisterDBStats(reg, name, sqlDB); err != nil {
			return nil, errors.Trace(err)
		}
		db := db
		pingers[name] = func(ctx context.Context) error { return repository.Ping(ctx, db) }
	}

	handler, err := svc.Routes(cfg, pools, api.Options{
		Name:        svc.Title,
		RootPath:    cfg.RootPath,
		Ping:        api.Pinger(pingers["primary"]),
		PingTimeout: cfg.Database.PoolTimeout,
		Metrics:     httpMetrics,
		Gatherer:    reg,
		RateLimit:   cfg.RateLimit,
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	inst := &Instance{
		Handler:  handler,
		Registry: reg,
		Monitor:  service.NewPoolMonitor(pingers, up, cfg.Database.PoolTimeout),
	}
	if cfg.Database.PingInterval > 0 {
		inst.scheduler = service.NewSchedulerService(time.UTC)
		if err := inst.Monitor.Schedule(inst.scheduler, cfg.Database.PingInterval); err != nil {
			return nil, errors.Annotate(err, "scheduling pool keepalive")
		}
	}
	return inst, nil
}

// Run opens the pools, builds svc and serves it until ctx is done.
func Run(ctx context.Context, cfg config.Config, svc Service) error {
	pools, err := repository.OpenPools(cfg)
	if err != nil {
		return errors.Annotate(err, "opening database")
	}
	defer func() {
		if err := pools.Close(); err != nil {
			logger.Warningf("closing database: %v", err)
		}
	}()

	inst, err := Build(cfg, svc, pools)
	if err != nil {
		return errors.Trace(err)
	}
	if inst.scheduler != nil {
		inst.scheduler.Start()
		defer inst.scheduler.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      inst.Handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Infof("%s service listening on %s (environment %s, replica %v)",
			svc.Name, srv.Addr, cfg.Environment, pools.HasReplica())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Annotate(err, "serving")
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Annotate(err, "shutdown")
	}
	return nil
}
