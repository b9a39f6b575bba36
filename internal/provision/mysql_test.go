package provision

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = Credentials{Host: "db.cluster", Port: 3306, Username: "admin", Password: "s3cret"}

func newMockInitializer(t *testing.T) (*MySQLInitializer, sqlmock.Sqlmock, *string) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	var dsn string
	ini := &MySQLInitializer{open: func(driver, d string) (*sql.DB, error) {
		assert.Equal(t, "mysql", driver)
		dsn = d
		return db, nil
	}}
	return ini, mock, &dsn
}

func expectGrant(mock sqlmock.Sqlmock, g Grant) {
	ok := sqlmock.NewResult(0, 0)
	mock.ExpectExec("CREATE DATABASE IF NOT EXISTS `" + g.Database + "` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DROP USER IF EXISTS ?@'%'").WithArgs(g.Username).WillReturnResult(ok)
	mock.ExpectExec("CREATE USER ?@'%' IDENTIFIED BY ?").WithArgs(g.Username, g.Password).WillReturnResult(ok)
	mock.ExpectExec("GRANT ALL PRIVILEGES ON `" + g.Database + "`.* TO ?@'%'").WithArgs(g.Username).WillReturnResult(ok)
}

func TestInitializeRunsStatementsInOrder(t *testing.T) {
	ini, mock, dsn := newMockInitializer(t)
	grants := []Grant{
		{Database: "users_db", Username: "users", Password: "u-pw"},
		{Database: "tasks_db", Username: "tasks", Password: "t-pw"},
	}
	for _, g := range grants {
		expectGrant(mock, g)
	}
	mock.ExpectExec("FLUSH PRIVILEGES").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, ini.Initialize(context.Background(), admin, grants))
	assert.NoError(t, mock.ExpectationsWereMet())

	cfg, err := mysql.ParseDSN(*dsn)
	require.NoError(t, err)
	assert.Equal(t, "db.cluster:3306", cfg.Addr)
	assert.Equal(t, "admin", cfg.User)
	assert.True(t, cfg.InterpolateParams)
	assert.Equal(t, ConnectTimeout, cfg.Timeout)
}

func TestInitializeStopsOnFailure(t *testing.T) {
	ini, mock, _ := newMockInitializer(t)
	users := Grant{Database: "users_db", Username: "users", Password: "u-pw"}
	mock.ExpectExec("CREATE DATABASE IF NOT EXISTS `users_db` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DROP USER IF EXISTS ?@'%'").WithArgs("users").
		WillReturnError(errors.New("Access denied for user 'admin'"))
	mock.ExpectClose()

	err := ini.Initialize(context.Background(), admin, []Grant{users})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initializing users_db")
	assert.Contains(t, err.Error(), "Access denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitializeRejectsBadDatabaseName(t *testing.T) {
	opened := false
	ini := &MySQLInitializer{open: func(string, string) (*sql.DB, error) {
		opened = true
		return nil, errors.New("unexpected")
	}}

	err := ini.Initialize(context.Background(), admin, []Grant{
		{Database: "users_db`; DROP DATABASE mysql; --", Username: "users"},
	})
	assert.True(t, errors.Is(err, errors.NotValid))
	assert.False(t, opened)
}

func TestAdminDSNDefaultsPort(t *testing.T) {
	cfg, err := mysql.ParseDSN(AdminDSN(Credentials{Host: "db", Username: "admin"}))
	require.NoError(t, err)
	assert.Equal(t, "db:3306", cfg.Addr)
}
