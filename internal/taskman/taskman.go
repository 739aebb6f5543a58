// Package taskman provides a bounded task executor with aggregate progress
// reporting. Callers submit a batch of named tasks and block on the whole
// batch; individual task failures are recorded, never cancel siblings, and
// are not retried.
package taskman

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/novelforge/source-registry/internal/logger"
)

// DefaultConcurrency bounds parallel task execution when no explicit limit
// is configured.
const DefaultConcurrency = 10

// Task is a named unit of work.
type Task struct {
	// Name identifies the task in results and progress reports.
	Name string

	// Run executes the task.
	Run func(ctx context.Context) error
}

// Progress is invoked after each task completes, with the number of
// completed tasks, the batch size, and the finished task's name.
type Progress func(done, total int, name string)

// Executor runs task batches with bounded concurrency.
type Executor struct {
	concurrency int
	log         logger.Logger
}

// New creates an executor. A non-positive concurrency falls back to
// DefaultConcurrency.
func New(concurrency int, log logger.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Executor{concurrency: concurrency, log: log}
}

// RunAll executes every task and blocks until the whole batch has finished.
// It returns per-task errors keyed by task name; tasks that succeeded have
// no entry. A failing task does not cancel its siblings.
func (e *Executor) RunAll(ctx context.Context, tasks []Task, onProgress Progress) map[string]error {
	results := make(map[string]error, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var (
		mu   sync.Mutex
		done int
	)

	g := &errgroup.Group{}
	g.SetLimit(e.concurrency)

	total := len(tasks)
	for _, task := range tasks {
		g.Go(func() error {
			err := task.Run(ctx)

			mu.Lock()
			if err != nil {
				results[task.Name] = err
			}
			done++
			completed := done
			mu.Unlock()

			if err != nil {
				e.log.Warn("task failed",
					logger.String("task", task.Name),
					logger.Err(err))
			}
			if onProgress != nil {
				onProgress(completed, total, task.Name)
			}
			// Errors are collected per task; never returned to the group,
			// so siblings keep running.
			return nil
		})
	}

	// Barrier: the batch either fully completes or fully fails per task.
	_ = g.Wait()

	return results
}
