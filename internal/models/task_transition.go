package models

import "errors"

// TaskEvent drives a task status transition.
type TaskEvent string

const (
	TaskEventStart   TaskEvent = "start"
	TaskEventBlock   TaskEvent = "block"
	TaskEventCancel  TaskEvent = "cancel"
	TaskEventReopen  TaskEvent = "reopen"
	TaskEventSubmit  TaskEvent = "submit"
	TaskEventApprove TaskEvent = "approve"
)

var ErrInvalidTransition = errors.New("task: invalid status transition")

// taskTransitions is the complete (from, event) -> to table. Anything absent
// is rejected. DONE is only reachable through approve.
var taskTransitions = map[TaskStatus]map[TaskEvent]TaskStatus{
	TaskStatusOpen: {
		TaskEventStart:   TaskStatusInProgress,
		TaskEventBlock:   TaskStatusBlocked,
		TaskEventCancel:  TaskStatusCancelled,
		TaskEventSubmit:  TaskStatusInProgress,
		TaskEventApprove: TaskStatusDone,
	},
	TaskStatusInProgress: {
		TaskEventBlock:   TaskStatusBlocked,
		TaskEventCancel:  TaskStatusCancelled,
		TaskEventSubmit:  TaskStatusInProgress,
		TaskEventApprove: TaskStatusDone,
	},
	TaskStatusBlocked: {
		TaskEventStart:   TaskStatusInProgress,
		TaskEventCancel:  TaskStatusCancelled,
		TaskEventApprove: TaskStatusDone,
	},
	TaskStatusCancelled: {
		TaskEventReopen:  TaskStatusOpen,
		TaskEventApprove: TaskStatusDone,
	},
	TaskStatusDone: {
		TaskEventApprove: TaskStatusDone,
	},
}

// Transition returns the status that event leads to from s.
func (s TaskStatus) Transition(event TaskEvent) (TaskStatus, error) {
	next, ok := taskTransitions[s][event]
	if !ok {
		return s, ErrInvalidTransition
	}
	return next, nil
}

// Accepts reports whether event is allowed from s.
func (s TaskStatus) Accepts(event TaskEvent) bool {
	_, err := s.Transition(event)
	return err == nil
}

// ManualEventFor maps a requested target status to the event a person may
// trigger directly. DONE has no manual event.
func ManualEventFor(target TaskStatus) (TaskEvent, bool) {
	switch target {
	case TaskStatusOpen:
		return TaskEventReopen, true
	case TaskStatusInProgress:
		return TaskEventStart, true
	case TaskStatusBlocked:
		return TaskEventBlock, true
	case TaskStatusCancelled:
		return TaskEventCancel, true
	}
	return "", false
}
