// Package jobs runs periodic maintenance tasks in the background.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Job is one periodic task. Run is called once at start and then every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner owns a set of jobs and their goroutines.
type Runner struct {
	jobs []Job
	wg   sync.WaitGroup
}

func NewRunner(jobs ...Job) *Runner {
	return &Runner{jobs: jobs}
}

// Start launches every job with a positive interval. Jobs stop when ctx is
// cancelled; Wait blocks until they have returned.
func (r *Runner) Start(ctx context.Context) {
	for _, job := range r.jobs {
		if job.Interval <= 0 {
			log.Warn().Str("job", job.Name).Msg("job disabled: interval not set")
			continue
		}
		r.wg.Add(1)
		go r.loop(ctx, job)
		log.Info().Str("job", job.Name).Dur("interval", job.Interval).Msg("started periodic job")
	}
}

func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()
	runOnce(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("job", job.Name).Msg("stopping periodic job")
			return
		case <-ticker.C:
			runOnce(ctx, job)
		}
	}
}

func runOnce(ctx context.Context, job Job) {
	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Msg("periodic job failed")
		return
	}
	log.Debug().Str("job", job.Name).Dur("took", time.Since(start)).Msg("periodic job finished")
}
