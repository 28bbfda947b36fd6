package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work.
type Job interface {
	// Name identifies the job in logs.
	Name() string
	// Schedule is a cron spec such as "0 3 * * *" or "@every 6h".
	Schedule() string
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on their cron schedule. A job still running
// when its next tick arrives is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
	log     zerolog.Logger
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		jobs:    make([]Job, 0),
		timeout: 10 * time.Minute,
		log:     log.With().Str("module", "jobs").Logger(),
	}
}

var ErrNoSchedule = errors.New("job has no schedule")

// Register schedules job on its cron spec.
func (s *Scheduler) Register(job Job) error {
	spec := job.Schedule()
	if spec == "" {
		return ErrNoSchedule
	}

	if _, err := s.cron.AddFunc(spec, func() { s.execute(job) }); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	s.log.Info().Str("job", job.Name()).Str("schedule", spec).Msg("job scheduled")
	return nil
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job failed")
		return
	}
	s.log.Info().Str("job", job.Name()).Dur("took", time.Since(start)).Msg("job completed")
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler stopped with jobs still running")
		return
	}
	s.log.Info().Msg("scheduler stopped")
}
