package service

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger checks one connection pool.
type Pinger func(ctx context.Context) error

// PoolMonitor pings connection pools on a schedule. A ping hands out an
// idle connection and validates it, so dead connections are discarded
// before a request draws them.
type PoolMonitor struct {
	pools   map[string]Pinger
	up      *prometheus.GaugeVec
	timeout time.Duration
}

// NewPoolMonitor builds a monitor over the named pools. up may be nil.
func NewPoolMonitor(pools map[string]Pinger, up *prometheus.GaugeVec, timeout time.Duration) *PoolMonitor {
	return &PoolMonitor{pools: pools, up: up, timeout: timeout}
}

// Check pings every pool once and returns the names of those that failed.
func (m *PoolMonitor) Check(ctx context.Context) []string {
	names := make([]string, 0, len(m.pools))
	for name := range m.pools {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		pctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := m.pools[name](pctx)
		cancel()

		value := 1.0
		if err != nil {
			value = 0
			failed = append(failed, name)
			logger.Warningf("keepalive ping of %s pool failed: %v", name, err)
		} else {
			logger.Tracef("keepalive ping of %s pool ok", name)
		}
		if m.up != nil {
			m.up.WithLabelValues(name).Set(value)
		}
	}
	return failed
}

// Schedule registers Check on s every interval.
func (m *PoolMonitor) Schedule(s *SchedulerService, interval time.Duration) error {
	_, err := s.Every(interval, func() {
		m.Check(context.Background())
	})
	return err
}
