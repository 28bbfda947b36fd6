package jobs

import "context"

// Reindexer rebuilds a search index from the database.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// ReindexProfesionalesJob resyncs the professional search index so that
// writes missed while the engine was down eventually show up.
type ReindexProfesionalesJob struct {
	reindexer Reindexer
	schedule  string
}

func NewReindexProfesionalesJob(reindexer Reindexer, schedule string) *ReindexProfesionalesJob {
	return &ReindexProfesionalesJob{reindexer: reindexer, schedule: schedule}
}

func (j *ReindexProfesionalesJob) Name() string { return "reindex-profesionales" }

func (j *ReindexProfesionalesJob) Schedule() string { return j.schedule }

func (j *ReindexProfesionalesJob) Run(ctx context.Context) error {
	_, err := j.reindexer.Reindex(ctx)
	return err
}
