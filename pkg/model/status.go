package model

import (
	"fmt"
)

// TaskState is the lifecycle state of a download task.
type TaskState int

// Task states. Transitions only move forward:
// Queued → InProgress → {Completed | Failed}, with Queued → Failed allowed
// for tasks that never start.
const (
	TaskQueued TaskState = iota
	TaskInProgress
	TaskCompleted
	TaskFailed
)

func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "queued"
	case TaskInProgress:
		return "in_progress"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("TaskState(%d)", int(s))
	}
}

// IsTerminal reports whether the state is terminal (finished).
func (s TaskState) IsTerminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// CanTransition reports whether moving from s to next keeps the status monotonic.
func (s TaskState) CanTransition(next TaskState) bool {
	switch s {
	case TaskQueued:
		return next == TaskInProgress || next == TaskFailed
	case TaskInProgress:
		return next == TaskInProgress || next == TaskCompleted || next == TaskFailed
	default:
		return false
	}
}

// TaskStatus is a snapshot of one task.
type TaskStatus struct {
	ID               uint64
	Requirement      FileRequirement
	State            TaskState
	Percent          int
	BytesTransferred int64
	// Err is set when State is TaskFailed.
	Err error
	// Order is the submission position within the run.
	Order int
}

// Advance applies a transition to the status, rejecting moves that would
// break monotonicity (a state going backwards or a shrinking percentage).
func (t *TaskStatus) Advance(next TaskState, percent int) error {
	if !t.State.CanTransition(next) {
		return fmt.Errorf("task %d: disallowed transition %s -> %s", t.ID, t.State, next)
	}
	if next == TaskInProgress && t.State == TaskInProgress && percent < t.Percent {
		return fmt.Errorf("task %d: progress went backwards %d -> %d", t.ID, t.Percent, percent)
	}
	t.State = next
	if next == TaskInProgress || next == TaskCompleted {
		t.Percent = percent
	}
	return nil
}
