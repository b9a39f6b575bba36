package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config keeps runtime settings for one service process. It is built once in
// main and handed to the components that need it.
type Config struct {
	ServiceName string
	Port        int
	// RootPath is the prefix a reverse proxy mounts the service under,
	// e.g. /api/v1/users. Routes are served with and without it.
	RootPath    string
	Environment string
	Testing     bool
	Debug       bool
	LogLevel    string
	BcryptCost  int

	Database  Database
	RateLimit RateLimit
}

// Database describes the primary endpoint, the optional read replica and
// the pool tuning shared by both.
type Database struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	ReadHost string

	PoolSize     int
	MaxOverflow  int
	PoolTimeout  time.Duration
	PoolRecycle  time.Duration
	PingInterval time.Duration
}

// RateLimit throttles each client to RPS requests per second with bursts
// of Burst. Clients are told apart by the connection's remote address,
// which behind a load balancer is the balancer itself. Set TrustProxy when
// the service only receives traffic through a proxy that appends the
// caller to X-Forwarded-For.
type RateLimit struct {
	Enabled    bool
	RPS        float64
	Burst      int
	TrustProxy bool
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win. service is the
// SERVICE_NAME used when none is set.
func Load(service string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Annotate(err, "loading .env")
	}
	return fromEnv(func(key string) string {
		if v := os.Getenv(key); v != "" || key != "SERVICE_NAME" {
			return v
		}
		return service
	})
}

func fromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	cfg := Config{
		ServiceName: p.str("SERVICE_NAME", "service"),
		Port:        p.int("PORT", 8000),
		RootPath:    strings.TrimRight(p.str("ROOT_PATH", ""), "/"),
		Environment: p.str("ENVIRONMENT", "development"),
		Testing:     p.bool("TESTING", false),
		Debug:       p.bool("DEBUG", false),
		LogLevel:    strings.ToUpper(p.str("LOG_LEVEL", "INFO")),
		BcryptCost:  p.int("BCRYPT_COST", 0),
		Database: Database{
			Driver:       strings.ToLower(p.str("DATABASE_DRIVER", DriverMySQL)),
			Host:         p.str("DATABASE_HOST", ""),
			Port:         p.int("DATABASE_PORT", 3306),
			User:         p.str("DATABASE_USER", ""),
			Password:     p.str("DATABASE_PASSWORD", ""),
			Name:         p.str("DATABASE_NAME", ""),
			ReadHost:     p.str("DATABASE_READ_HOST", ""),
			PoolSize:     p.int("DB_POOL_SIZE", 20),
			MaxOverflow:  p.int("DB_MAX_OVERFLOW", 30),
			PoolTimeout:  p.seconds("DB_POOL_TIMEOUT", 30*time.Second),
			PoolRecycle:  p.seconds("DB_POOL_RECYCLE", 1800*time.Second),
			PingInterval: p.seconds("DB_POOL_PING_INTERVAL", 30*time.Second),
		},
		RateLimit: RateLimit{
			Enabled:    p.bool("RATE_LIMIT_ENABLED", false),
			RPS:        p.float("RATE_LIMIT_RPS", 10),
			Burst:      p.int("RATE_LIMIT_BURST", 20),
			TrustProxy: p.bool("RATE_LIMIT_TRUST_PROXY", false),
		},
	}
	if p.err != nil {
		return cfg, p.err
	}
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.NotValidf("PORT %d", c.Port)
	}
	if c.RootPath != "" && !strings.HasPrefix(c.RootPath, "/") {
		return errors.NotValidf("ROOT_PATH %q without leading slash", c.RootPath)
	}
	db := c.Database
	switch db.Driver {
	case DriverMySQL:
		if db.Host == "" {
			return errors.NotValidf("empty DATABASE_HOST")
		}
		if db.User == "" {
			return errors.NotValidf("empty DATABASE_USER")
		}
		if db.Name == "" {
			return errors.NotValidf("empty DATABASE_NAME")
		}
	case DriverSQLite:
		if db.Name == "" {
			return errors.NotValidf("empty DATABASE_NAME")
		}
	default:
		return errors.NotValidf("DATABASE_DRIVER %q", db.Driver)
	}
	if db.PoolSize < 1 {
		return errors.NotValidf("DB_POOL_SIZE %d", db.PoolSize)
	}
	if db.MaxOverflow < 0 {
		return errors.NotValidf("DB_MAX_OVERFLOW %d", db.MaxOverflow)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		return errors.NotValidf("rate limit %v/s burst %d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

// DSN returns the data source name of the primary endpoint.
func (d Database) DSN() string {
	return d.dsnFor(d.Host)
}

// ReadDSN returns the replica DSN, or the primary one when no replica is
// configured. The boolean reports whether a replica is in use.
func (d Database) ReadDSN() (string, bool) {
	if d.ReadHost == "" || d.Driver != DriverMySQL {
		return d.DSN(), false
	}
	return d.dsnFor(d.ReadHost), true
}

func (d Database) dsnFor(host string) string {
	if d.Driver == DriverSQLite {
		return d.Name
	}
	mc := mysqldriver.NewConfig()
	mc.User = d.User
	mc.Passwd = d.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(d.Port))
	mc.DBName = d.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = d.PoolTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// MaxOpenConns mirrors a queue pool of PoolSize connections that may
// overflow by MaxOverflow.
func (d Database) MaxOpenConns() int {
	return d.PoolSize + d.MaxOverflow
}

type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw)
		return def
	}
	return v
}

func (p *parser) float(key string, def float64) float64 {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(key, raw)
		return def
	}
	return v
}

func (p *parser) bool(key string, def bool) bool {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw)
		return def
	}
	return v
}

// seconds accepts either a bare number of seconds or a Go duration string.
func (p *parser) seconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		p.fail(key, raw)
		return def
	}
	return d
}

func (p *parser) fail(key, raw string) {
	if p.err == nil {
		p.err = errors.NotValidf("%s=%q", key, raw)
	}
}
