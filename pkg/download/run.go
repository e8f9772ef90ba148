package download

import (
	"context"
	"iter"
	"sync"

	"github.com/glorpus-work/blockfetch/internal/logger"
	"github.com/glorpus-work/blockfetch/pkg/errors"
	"github.com/glorpus-work/blockfetch/pkg/model"
)

// Event is one observed status change of a task.
type Event struct {
	TaskID  uint64
	Order   int
	State   model.TaskState
	Percent int
	Bytes   int64
	Kind    model.RequirementKind
	Path    string
	// Err is set on Failed events and wraps one of ErrNetwork, ErrTimeout,
	// ErrFilesystem, ErrIntegrityMismatch or ErrCancelled.
	Err error
}

// Summary aggregates the terminal states of a run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Bytes     int64
}

// OK reports whether every task completed.
func (s Summary) OK() bool { return s.Failed == 0 && s.Completed == s.Total }

// Run is the caller's read-only handle on one submission. Events interleave
// by completion time; correlate them by TaskID.
type Run struct {
	mu       sync.Mutex
	statuses []model.TaskStatus

	events *eventQueue

	cancelOnce sync.Once
	cancelled  chan struct{}
	done       chan struct{}
}

func newRun(n int) *Run {
	return &Run{
		statuses:  make([]model.TaskStatus, n),
		events:    newEventQueue(),
		cancelled: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Cancel stops admitting queued tasks. Tasks already transferring finish or
// fail on their own; tasks still queued fail with ErrCancelled.
func (r *Run) Cancel() {
	r.cancelOnce.Do(func() { close(r.cancelled) })
}

// Done is closed once every task has reached a terminal state.
func (r *Run) Done() <-chan struct{} { return r.done }

// Next blocks until the next event is available. It returns false once the
// run is finished and every event has been consumed, or when ctx ends.
func (r *Run) Next(ctx context.Context) (Event, bool) {
	return r.events.pop(ctx)
}

// TryNext returns the next event without blocking.
func (r *Run) TryNext() (Event, bool) {
	return r.events.tryPop()
}

// All iterates over every event until the run is finished.
func (r *Run) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, ok := r.events.pop(context.Background())
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Statuses returns a snapshot of every task in submission order.
func (r *Run) Statuses() []model.TaskStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.TaskStatus, len(r.statuses))
	copy(out, r.statuses)
	return out
}

// Wait blocks until every task is terminal and summarizes the run.
func (r *Run) Wait(ctx context.Context) (Summary, error) {
	select {
	case <-r.done:
		return r.summary(), nil
	case <-ctx.Done():
		return r.summary(), ctx.Err()
	}
}

func (r *Run) summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{Total: len(r.statuses)}
	for _, st := range r.statuses {
		switch st.State {
		case model.TaskCompleted:
			s.Completed++
		case model.TaskFailed:
			s.Failed++
		}
		s.Bytes += st.BytesTransferred
	}
	return s
}

func (r *Run) admissionClosed(ctx context.Context) bool {
	select {
	case <-r.cancelled:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (r *Run) requirement(i int) model.FileRequirement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[i].Requirement
}

// advance moves task i to next and publishes the event. Progress that does
// not change the percentage is recorded without an event. The status lock is
// released before the event is queued.
func (r *Run) advance(i int, next model.TaskState, percent int, bytes int64, err error) {
	r.mu.Lock()
	st := &r.statuses[i]
	if st.State == model.TaskInProgress && next == model.TaskInProgress && percent == st.Percent {
		st.BytesTransferred = bytes
		r.mu.Unlock()
		return
	}
	if advErr := st.Advance(next, percent); advErr != nil {
		r.mu.Unlock()
		logger.Error("Rejected status transition", logger.Fields{"error": advErr.Error()})
		return
	}
	st.BytesTransferred = bytes
	st.Err = err
	ev := eventFor(*st)
	r.mu.Unlock()

	r.events.push(ev)
}

func (r *Run) cancelQueued(i int) {
	r.advance(i, model.TaskFailed, 0, 0, errors.Wrap(errors.ErrCancelled, "run cancelled before the task started"))
}

func (r *Run) finish() {
	close(r.done)
	r.events.close()
}

func eventFor(st model.TaskStatus) Event {
	return Event{
		TaskID:  st.ID,
		Order:   st.Order,
		State:   st.State,
		Percent: st.Percent,
		Bytes:   st.BytesTransferred,
		Kind:    st.Requirement.Kind,
		Path:    st.Requirement.Path,
		Err:     st.Err,
	}
}
