package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Pinger checks the database pool.
type Pinger func(ctx context.Context) error

// BucketLister lists the storage folders.
type BucketLister interface {
	Buckets(ctx context.Context) ([]string, error)
}

type Report struct {
	Status   string        `json:"status"`
	Database string        `json:"database"`
	Storage  StorageReport `json:"storage"`
	Time     time.Time     `json:"timestamp"`
}

type StorageReport struct {
	Status  string   `json:"status"`
	Buckets []string `json:"buckets,omitempty"`
}

type HealthService interface {
	Check(ctx context.Context) Report
}

type healthService struct {
	ping    Pinger
	storage BucketLister
	timeout time.Duration
	log     zerolog.Logger
}

func NewHealthService(ping Pinger, storage BucketLister, log zerolog.Logger) HealthService {
	return &healthService{
		ping:    ping,
		storage: storage,
		timeout: 3 * time.Second,
		log:     log.With().Str("module", "health").Logger(),
	}
}

func (s *healthService) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := Report{
		Status:   StatusHealthy,
		Database: StatusHealthy,
		Storage:  StorageReport{Status: StatusHealthy},
		Time:     time.Now().UTC(),
	}

	if err := s.ping(ctx); err != nil {
		s.log.Error().Err(err).Msg("database ping failed")
		report.Database = StatusUnhealthy
		report.Status = StatusUnhealthy
	}

	buckets, err := s.storage.Buckets(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("storage check failed")
		report.Storage.Status = StatusUnhealthy
		if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	} else {
		report.Storage.Buckets = buckets
	}

	return report
}
