package task

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/somo/core"
)

// TimeLog is a single start/stop interval of tracked study time belonging to one task.
// EndTime is nil while the timer is running.
type TimeLog struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"` // UTC
	EndTime   *time.Time `json:"end_time"`   // UTC
}

func (l TimeLog) IsOpen() bool { return l.EndTime == nil }

// Duration returns the log's elapsed time; an open log is measured up to asOf.
func (l TimeLog) Duration(asOf time.Time) time.Duration {
	if l.EndTime != nil {
		return l.EndTime.Sub(l.StartTime)
	}
	if asOf.Before(l.StartTime) {
		return 0
	}
	return asOf.Sub(l.StartTime)
}

// StudyTask is a dated study item with its time logs.
// Invariant: at most one TimeLog is open and its id equals ActiveTimeLogID.
type StudyTask struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Date            time.Time `json:"date"` // calendar day, midnight UTC
	Priority        int       `json:"priority"`
	Category        string    `json:"category"`
	Subcategory     string    `json:"subcategory,omitempty"`
	IsCompleted     bool      `json:"is_completed"`
	IsArchived      bool      `json:"is_archived"`
	TimeLogs        []TimeLog `json:"time_logs"` // ordered by creation
	ActiveTimeLogID string    `json:"active_time_log_id,omitempty"`
	Color           string    `json:"color,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

func (t StudyTask) IsRunning() bool { return t.ActiveTimeLogID != "" }

// HasTimeLogged reports whether any time was ever tracked on the task.
func (t StudyTask) HasTimeLogged() bool { return len(t.TimeLogs) > 0 }

func (t StudyTask) findLog(logID string) int {
	for i, l := range t.TimeLogs {
		if l.ID == logID {
			return i
		}
	}
	return -1
}

// Day returns the task's calendar day normalized to midnight UTC.
func (t StudyTask) Day() time.Time {
	return Day(t.Date)
}

// Day normalizes an instant to its calendar day at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewTask contains information needed to create a new StudyTask.
type NewTask struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Priority    int    `json:"priority" validate:"required,gt=0"`
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Category = core.CleanString(nt.Category)
	nt.Subcategory = core.CleanString(nt.Subcategory)
	return validate.Struct(nt)
}

func (nt NewTask) Task(now time.Time) StudyTask {
	date, _ := time.Parse("2006-01-02", nt.Date)
	return StudyTask{
		ID:          uuid.NewString(),
		Title:       nt.Title,
		Description: nt.Description,
		Date:        date,
		Priority:    nt.Priority,
		Category:    nt.Category,
		Subcategory: nt.Subcategory,
		Color:       nt.Color,
		Icon:        nt.Icon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateTask defines what information may be provided to modify an existing StudyTask.
// Zero-valued fields keep their original values; IsCompleted/IsArchived use pointers
// so "not provided" and "false" stay distinct.
type UpdateTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Priority    int    `json:"priority" validate:"omitempty,gt=0"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	IsCompleted *bool  `json:"is_completed"`
	IsArchived  *bool  `json:"is_archived"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Category = core.CleanString(ut.Category)
	ut.Subcategory = core.CleanString(ut.Subcategory)
	return validate.Struct(ut)
}

// Apply merges the update into orig, returning the updated copy.
func (ut UpdateTask) Apply(orig StudyTask, now time.Time) StudyTask {
	if ut.Title != "" {
		orig.Title = ut.Title
	}
	if ut.Description != "" {
		orig.Description = ut.Description
	}
	if ut.Date != "" {
		if date, err := time.Parse("2006-01-02", ut.Date); err == nil {
			orig.Date = date
		}
	}
	if ut.Priority > 0 {
		orig.Priority = ut.Priority
	}
	if ut.Category != "" {
		orig.Category = ut.Category
	}
	if ut.Subcategory != "" {
		orig.Subcategory = ut.Subcategory
	}
	if ut.IsCompleted != nil {
		orig.IsCompleted = *ut.IsCompleted
	}
	if ut.IsArchived != nil {
		orig.IsArchived = *ut.IsArchived
	}
	if ut.Color != "" {
		orig.Color = ut.Color
	}
	if ut.Icon != "" {
		orig.Icon = ut.Icon
	}
	orig.UpdatedAt = now
	return orig
}
