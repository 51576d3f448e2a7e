package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrAlreadyRunning = errors.New("a timer is already running on this task")
	ErrNotRunning     = errors.New("no timer is running on this task")
	ErrInvalidRange   = errors.New("end time must be after start time")
	ErrLogNotFound    = errors.New("time log not found")
	ErrNotFound       = errors.New("task not found")
)

// The timer functions below are pure: they never read a wall clock, callers
// supply `now`, and the input task is not mutated. Time-log slices are copied
// on write so previous task values stay valid.

func cloneLogs(logs []TimeLog) []TimeLog {
	out := make([]TimeLog, len(logs))
	copy(out, logs)
	return out
}

// StartTimer opens a new time log on the task.
// Fails with ErrAlreadyRunning if an active log exists; the task is returned unchanged.
func StartTimer(t StudyTask, now time.Time) (StudyTask, error) {
	if t.IsRunning() {
		return t, ErrAlreadyRunning
	}
	log := TimeLog{ID: uuid.NewString(), StartTime: now.UTC()}
	t.TimeLogs = append(cloneLogs(t.TimeLogs), log)
	t.ActiveTimeLogID = log.ID
	t.UpdatedAt = now.UTC()
	return t, nil
}

// StopTimer closes the task's active log at `now` and clears ActiveTimeLogID.
// Fails with ErrNotRunning if no active log exists; the task is returned unchanged.
func StopTimer(t StudyTask, now time.Time) (StudyTask, error) {
	if !t.IsRunning() {
		return t, ErrNotRunning
	}
	i := t.findLog(t.ActiveTimeLogID)
	if i < 0 {
		// broken invariant; recover to Idle
		t.ActiveTimeLogID = ""
		return t, ErrNotRunning
	}
	end := now.UTC()
	t.TimeLogs = cloneLogs(t.TimeLogs)
	t.TimeLogs[i].EndTime = &end
	t.ActiveTimeLogID = ""
	t.UpdatedAt = end
	return t, nil
}

// AddManualLog appends a closed log; the running state is untouched.
// Fails with ErrInvalidRange if end <= start.
func AddManualLog(t StudyTask, start, end time.Time) (StudyTask, error) {
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return t, ErrInvalidRange
	}
	t.TimeLogs = append(cloneLogs(t.TimeLogs), TimeLog{ID: uuid.NewString(), StartTime: start, EndTime: &end})
	return t, nil
}

// EditLog replaces a closed interval in place; sibling order is preserved.
// Fails with ErrLogNotFound / ErrInvalidRange.
func EditLog(t StudyTask, logID string, start, end time.Time) (StudyTask, error) {
	i := t.findLog(logID)
	if i < 0 {
		return t, ErrLogNotFound
	}
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return t, ErrInvalidRange
	}
	t.TimeLogs = cloneLogs(t.TimeLogs)
	t.TimeLogs[i].StartTime = start
	t.TimeLogs[i].EndTime = &end
	return t, nil
}

// DeleteLog removes a log; deleting the active log forces Running -> Idle.
// Removing an unknown log is a no-op.
func DeleteLog(t StudyTask, logID string) StudyTask {
	i := t.findLog(logID)
	if i < 0 {
		return t
	}
	logs := make([]TimeLog, 0, len(t.TimeLogs)-1)
	logs = append(logs, t.TimeLogs[:i]...)
	logs = append(logs, t.TimeLogs[i+1:]...)
	t.TimeLogs = logs
	if t.ActiveTimeLogID == logID {
		t.ActiveTimeLogID = ""
	}
	return t
}

// TotalDuration sums all closed intervals plus (asOf - start) for the open log.
func TotalDuration(t StudyTask, asOf time.Time) time.Duration {
	var total time.Duration
	for _, l := range t.TimeLogs {
		total += l.Duration(asOf)
	}
	return total
}
