// Package scheduler partitions a render run into Render and Process
// tasks and executes them with a wave-based bounded-parallelism policy:
// unbounded fan-out when maxThreads <= 0 (one goroutine per task, joined
// together), otherwise fixed-size waves with a barrier between them,
// using golang.org/x/sync/errgroup so the first worker error cancels the
// rest of its wave instead of being silently dropped.
package scheduler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one unit of work; Run receives the task's index so it can mix
// it into its RNG seed (see core.NewTaskRand).
type Task func(ctx context.Context, index int) error

// Scheduler runs a batch of Tasks under a wave-based concurrency cap.
type Scheduler struct {
	// MaxThreads caps concurrent tasks per wave. <= 0 means unbounded:
	// every task gets its own goroutine and all are joined together.
	MaxThreads int
	// OnWaveDone is called after each wave completes, with the number of
	// tasks finished so far; used to advance a progress bar.
	OnWaveDone func(completed, total int)
}

// Run executes every task in tasks. A task's error cancels the context
// passed to every task in its wave and aborts the run; Run returns the
// first such error. This makes a worker failure fatal to the whole
// engine run, with no per-task isolation.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	waveSize := len(tasks)
	if s.MaxThreads > 0 {
		waveSize = s.MaxThreads
	}

	completed := 0
	for start := 0; start < len(tasks); start += waveSize {
		end := start + waveSize
		if end > len(tasks) {
			end = len(tasks)
		}

		g, waveCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			task := tasks[i]
			idx := i
			g.Go(func() error {
				return task(waveCtx, idx)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		completed += end - start
		if s.OnWaveDone != nil {
			s.OnWaveDone(completed, len(tasks))
		}
	}
	return nil
}
