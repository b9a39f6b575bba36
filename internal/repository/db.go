package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"service-mesh/internal/config"
	"service-mesh/internal/logging"
)

// NewDB opens a connection pool for dsn, applies the pool settings from cfg
// and verifies connectivity.
func NewDB(cfg config.Config, dsn string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(cfg.ServiceName, cfg.Debug),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	configurePool(cfg, sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.PoolTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverSQLite:
		if err := prepareSQLiteFile(dsn); err != nil {
			return nil, err
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

type poolSetter interface {
	SetMaxOpenConns(int)
	SetMaxIdleConns(int)
	SetConnMaxLifetime(time.Duration)
}

func configurePool(cfg config.Config, pool poolSetter) {
	db := cfg.Database
	if db.Driver == config.DriverSQLite {
		// SQLite serialises writers; one connection also keeps in-memory
		// databases alive for the lifetime of the pool.
		pool.SetMaxOpenConns(1)
		return
	}
	pool.SetMaxOpenConns(db.MaxOpenConns())
	pool.SetConnMaxLifetime(db.PoolRecycle)
	if cfg.Testing {
		pool.SetMaxIdleConns(0)
		return
	}
	pool.SetMaxIdleConns(db.PoolSize)
}

// prepareSQLiteFile makes sure the directory of a file-backed SQLite
// database exists. DATABASE_NAME may be a bare path or a file: URI.
func prepareSQLiteFile(name string) error {
	path, query, _ := strings.Cut(strings.TrimPrefix(name, "file:"), "?")
	if path == ":memory:" || strings.Contains(query, "mode=memory") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("sqlite database directory %s: %w", dir, err)
	}
	return nil
}

// Pools holds the primary pool and the pool used for read-only queries.
// Read is the primary pool itself when no replica is configured.
type Pools struct {
	Primary *gorm.DB
	Read    *gorm.DB
}

// OpenPools opens the primary pool and, when DATABASE_READ_HOST is set, a
// separate replica pool.
func OpenPools(cfg config.Config) (*Pools, error) {
	primary, err := NewDB(cfg, cfg.Database.DSN())
	if err != nil {
		return nil, err
	}
	readDSN, replica := cfg.Database.ReadDSN()
	if !replica {
		return &Pools{Primary: primary, Read: primary}, nil
	}
	read, err := NewDB(cfg, readDSN)
	if err != nil {
		closeDB(primary)
		return nil, fmt.Errorf("read replica: %w", err)
	}
	return &Pools{Primary: primary, Read: read}, nil
}

// HasReplica reports whether reads go to a separate endpoint.
func (p *Pools) HasReplica() bool {
	return p.Read != p.Primary
}

// Close releases both pools.
func (p *Pools) Close() error {
	err := closeDB(p.Primary)
	if p.HasReplica() {
		if rerr := closeDB(p.Read); err == nil {
			err = rerr
		}
	}
	return err
}

// Ping runs a trivial round trip on db.
func Ping(ctx context.Context, db *gorm.DB) error {
	var one int
	return db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
