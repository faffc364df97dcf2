// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a named unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration // per run; 0 means 30s
	Run      func(ctx context.Context) error
}

// Runner drives each job on its own ticker until Stop is called.
type Runner struct {
	log    *zap.Logger
	jobs   []Job
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRunner creates a runner for the given jobs. Jobs with a non-positive
// interval or nil Run are skipped.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	keep := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			logger.Warn("skipping background job", zap.String("job", j.Name))
			continue
		}
		keep = append(keep, j)
	}
	return &Runner{log: logger, jobs: keep, stopCh: make(chan struct{})}
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job to stop and waits for in-flight runs to finish.
// It is safe to call more than once.
func (r *Runner) Stop() {
	r.once.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		r.log.Info("background jobs stopped", zap.Int("count", len(r.jobs)))
	})
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(j)
		}
	}
}

func (r *Runner) runOnce(j Job) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop cancels a long run rather than waiting out its timeout.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-done:
		}
	}()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		r.log.Error("background job failed",
			zap.String("job", j.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
	}
}
