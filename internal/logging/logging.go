// Package logging configures loggo for the service binaries and bridges
// GORM's logger onto it.
package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Configure sets the root logger level, e.g. "INFO" or "DEBUG".
func Configure(level string) error {
	if _, ok := loggo.ParseLevel(level); !ok {
		return errors.NotValidf("log level %q", level)
	}
	return loggo.ConfigureLoggers("<root>=" + level)
}

// SlowThreshold is the query duration above which GORM statements are
// reported as warnings.
const SlowThreshold = time.Second

type gormLogger struct {
	logger loggo.Logger
	level  gormlogger.LogLevel
}

// NewGormLogger returns a GORM logger writing to the "<module>.sql" loggo
// module. With echo set every statement is logged at DEBUG, otherwise only
// slow statements and errors are reported.
func NewGormLogger(module string, echo bool) gormlogger.Interface {
	level := gormlogger.Warn
	if echo {
		level = gormlogger.Info
	}
	return &gormLogger{
		logger: loggo.GetLogger(module + ".sql"),
		level:  level,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger.Warningf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.Errorf("%v [%s] rows=%s %s", err, elapsed, rowsString(rows), sql)
	case elapsed > SlowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warningf("slow query [%s >= %s] rows=%s %s", elapsed, SlowThreshold, rowsString(rows), sql)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debugf("[%s] rows=%s %s", elapsed, rowsString(rows), sql)
	}
}

func rowsString(rows int64) string {
	if rows < 0 {
		return "-"
	}
	return fmt.Sprint(rows)
}
