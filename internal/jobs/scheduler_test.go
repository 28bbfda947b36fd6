package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Angel-Eco/CuidadoPRO/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReindexer struct {
	calls       chan struct{}
	hadDeadline bool
	err         error
}

func newCountingReindexer() *countingReindexer {
	return &countingReindexer{calls: make(chan struct{}, 8)}
}

func (c *countingReindexer) Reindex(ctx context.Context) (int, error) {
	_, c.hadDeadline = ctx.Deadline()
	c.calls <- struct{}{}
	return 3, c.err
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := NewScheduler(logger.Nop())

	err := s.Register(NewReindexProfesionalesJob(newCountingReindexer(), "cada hora"))
	assert.Error(t, err)

	err = s.Register(NewReindexProfesionalesJob(newCountingReindexer(), ""))
	assert.ErrorIs(t, err, ErrNoSchedule)
	assert.Empty(t, s.jobs)
}

func TestExecuteRunsWithTimeout(t *testing.T) {
	s := NewScheduler(logger.Nop())
	r := newCountingReindexer()
	r.err = errors.New("meilisearch down")

	s.execute(NewReindexProfesionalesJob(r, "@every 6h"))

	assert.Len(t, r.calls, 1)
	assert.True(t, r.hadDeadline)
}

func TestScheduledJobFires(t *testing.T) {
	s := NewScheduler(logger.Nop())
	r := newCountingReindexer()
	require.NoError(t, s.Register(NewReindexProfesionalesJob(r, "@every 1s")))

	s.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(ctx)
	}()

	select {
	case <-r.calls:
	case <-time.After(3 * time.Second):
		t.Fatal("reindex job did not run")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(logger.Nop())
	require.NoError(t, s.Register(NewReindexProfesionalesJob(newCountingReindexer(), "@every 1h")))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	assert.NoError(t, ctx.Err())
}
