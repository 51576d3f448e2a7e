package store

import (
	"errors"
	"time"

	"github.com/trezcool/somo/core/exam"
	"github.com/trezcool/somo/core/note"
	"github.com/trezcool/somo/core/study"
	"github.com/trezcool/somo/core/task"
)

var (
	// errors
	ErrNotFound     = errors.New("entity not found")
	ErrTreeNotFound = errors.New("study data not found")
)

// Settings is the tree-wide singleton.
type Settings struct {
	WeeklyStudyGoalHours float64   `json:"weekly_study_goal_hours"`
	LastWeekGoalMetAt    time.Time `json:"last_week_goal_met_at"`
}

// EntityTree is the complete object graph of one user's study data.
// Values handed out by the Store are never mutated in place: every update
// replaces only the path from root to the changed node, so a previously read
// tree stays valid.
type EntityTree struct {
	Subjects  []study.Subject  `json:"subjects"`
	Tasks     []task.StudyTask `json:"tasks"`
	Exams     []exam.Exam      `json:"exams"`
	Notes     []note.Note      `json:"notes"`
	Resources []note.Resource  `json:"resources"`
	Settings  Settings         `json:"settings"`
}

func (t EntityTree) FindSubject(id string) int {
	for i, s := range t.Subjects {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (t EntityTree) FindTask(id string) int {
	for i, tsk := range t.Tasks {
		if tsk.ID == id {
			return i
		}
	}
	return -1
}

func (t EntityTree) FindExam(id string) int {
	for i, e := range t.Exams {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (t EntityTree) FindNote(id string) int {
	for i, n := range t.Notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (t EntityTree) FindResource(id string) int {
	for i, r := range t.Resources {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// FindChapter locates a chapter anywhere in the subject tree.
func (t EntityTree) FindChapter(chapterID string) (si, pi, ci int) {
	for si, s := range t.Subjects {
		for pi, p := range s.Papers {
			if ci := p.FindChapter(chapterID); ci >= 0 {
				return si, pi, ci
			}
		}
	}
	return -1, -1, -1
}
