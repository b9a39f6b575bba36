package provision

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/juju/errors"
)

// ConnectTimeout bounds the admin connection handshake.
const ConnectTimeout = 30 * time.Second

// Grant is one database together with the account allowed to use it.
type Grant struct {
	Database string
	Username string
	Password string
}

var identifier = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// MySQLInitializer creates databases and accounts with admin credentials.
// Every statement is idempotent, so a run can be repeated safely.
type MySQLInitializer struct {
	open func(driverName, dsn string) (*sql.DB, error)
}

func NewMySQLInitializer() *MySQLInitializer {
	return &MySQLInitializer{open: sql.Open}
}

// AdminDSN returns the DSN of the admin connection. Parameters are
// interpolated client side so account names can be bound in statements
// the server does not accept as prepared statements.
func AdminDSN(admin Credentials) string {
	port := admin.Port
	if port == 0 {
		port = 3306
	}
	cfg := mysql.NewConfig()
	cfg.User = admin.Username
	cfg.Passwd = admin.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(admin.Host, strconv.Itoa(port))
	cfg.Timeout = ConnectTimeout
	cfg.InterpolateParams = true
	return cfg.FormatDSN()
}

// Initialize runs, for each grant, the database creation, account
// (re)creation and privilege grant, then flushes privileges.
func (m *MySQLInitializer) Initialize(ctx context.Context, admin Credentials, grants []Grant) error {
	for _, g := range grants {
		if !identifier.MatchString(g.Database) {
			return errors.NotValidf("database name %q", g.Database)
		}
		if g.Username == "" {
			return errors.NotValidf("empty username for %s", g.Database)
		}
	}

	logger.Infof("initializing databases at %s:%d as %q", admin.Host, admin.Port, admin.Username)
	db, err := m.open("mysql", AdminDSN(admin))
	if err != nil {
		return errors.Annotate(err, "connecting")
	}
	defer db.Close()

	for _, g := range grants {
		if err := initialize(ctx, db, g); err != nil {
			logger.Errorf("initializing %s: %v", g.Database, err)
			return errors.Annotatef(err, "initializing %s", g.Database)
		}
	}
	if _, err := db.ExecContext(ctx, "FLUSH PRIVILEGES"); err != nil {
		return errors.Annotate(err, "flushing privileges")
	}
	logger.Infof("database initialization completed")
	return nil
}

func initialize(ctx context.Context, db *sql.DB, g Grant) error {
	steps := []struct {
		query string
		args  []interface{}
	}{
		{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", g.Database), nil},
		{"DROP USER IF EXISTS ?@'%'", []interface{}{g.Username}},
		{"CREATE USER ?@'%' IDENTIFIED BY ?", []interface{}{g.Username, g.Password}},
		{fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO ?@'%%'", g.Database), []interface{}{g.Username}},
	}
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.query, s.args...); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}
