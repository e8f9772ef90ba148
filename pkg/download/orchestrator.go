// Package download executes file requirements on a fixed pool of workers and
// reports per-task progress through a Run.
//
// Tasks are admitted in submission order from a single FIFO queue. Every task
// ends Completed or Failed; one task failing never affects its siblings.
package download

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/http"
	"github.com/glorpus-work/blockfetch/pkg/model"
)

// DefaultConcurrency is the worker count used when Options.Concurrency is unset.
const DefaultConcurrency = 4

// Recorder receives task lifecycle measurements. pkg/metrics implements it.
type Recorder interface {
	TaskStarted()
	TaskFinished(state model.TaskState, bytes int64, elapsed time.Duration)
}

// Options control an Orchestrator.
type Options struct {
	// Concurrency is the number of workers per run.
	Concurrency int
	// TaskTimeout bounds the network operation of a single task. Zero disables it.
	TaskTimeout time.Duration
	// Metrics is optional.
	Metrics Recorder
}

// Orchestrator runs batches of file requirements. Task ids are unique for the
// lifetime of the Orchestrator.
type Orchestrator struct {
	transport http.Transport
	opts      Options
	nextID    atomic.Uint64
}

// New creates an Orchestrator fetching through transport.
func New(transport http.Transport, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Metrics == nil {
		opts.Metrics = noopRecorder{}
	}
	return &Orchestrator{transport: transport, opts: opts}
}

// Submit queues reqs and starts working on them in the background. The
// returned Run streams one Queued event per task, in submission order,
// before any other event. Cancelling ctx aborts in-flight transfers as well
// as admission; Run.Cancel only stops admission.
//
// Submitting the same destination path twice while a write to it is in
// flight is a caller error.
func (o *Orchestrator) Submit(ctx context.Context, reqs []model.FileRequirement) *Run {
	run := newRun(len(reqs))

	queue := make(chan int, len(reqs))
	for i, req := range reqs {
		run.statuses[i] = model.TaskStatus{
			ID:          o.nextID.Add(1),
			Requirement: req,
			State:       model.TaskQueued,
			Order:       i,
		}
		run.events.push(eventFor(run.statuses[i]))
		queue <- i
	}
	close(queue)

	workers := min(o.opts.Concurrency, len(reqs))
	logger.Debug("Submitted download run", logger.Fields{"tasks": len(reqs), "workers": workers})

	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for i := range queue {
				if run.admissionClosed(ctx) {
					run.cancelQueued(i)
					continue
				}
				o.execute(ctx, run, i)
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		run.finish()
	}()
	return run
}

type noopRecorder struct{}

func (noopRecorder) TaskStarted() {}
func (noopRecorder) TaskFinished(model.TaskState, int64, time.Duration) {}
