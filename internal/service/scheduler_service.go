package service

import (
	"time"

	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
)

// SchedulerService runs the background maintenance jobs of a service
// process. A job still running when its next tick arrives skips that tick.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// Every runs job at a fixed delay. Delays are whole seconds; shorter ones
// round up to one second.
func (s *SchedulerService) Every(delay time.Duration, job func()) (cron.EntryID, error) {
	if delay <= 0 {
		return 0, errors.NotValidf("job delay %v", delay)
	}
	return s.cron.Schedule(cron.Every(delay), cron.FuncJob(job)), nil
}
