package exam

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/study"
)

// UnknownRef is rendered wherever an exam points at a subject or chapter that
// no longer exists. Dangling references are tolerated, never repaired.
const UnknownRef = "N/A"

// Exam references the subject tree by denormalized ids; referential integrity
// is NOT enforced and deleting a subject leaves its exams in place.
type Exam struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SubjectID   string    `json:"subject_id"`
	ChapterID   string    `json:"chapter_id,omitempty"`
	Date        time.Time `json:"date"` // UTC
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Countdown returns the time remaining until the exam, floored at zero.
func (e Exam) Countdown(now time.Time) time.Duration {
	if now.After(e.Date) {
		return 0
	}
	return e.Date.Sub(now)
}

// Display carries the resolved names shown on exam cards.
type Display struct {
	SubjectName string `json:"subject_name"`
	ChapterName string `json:"chapter_name"`
}

// Resolve looks the exam's references up in the subject tree, falling back to
// UnknownRef for anything dangling.
func (e Exam) Resolve(subjects []study.Subject) Display {
	d := Display{SubjectName: UnknownRef, ChapterName: UnknownRef}
	for _, s := range subjects {
		if s.ID != e.SubjectID {
			continue
		}
		d.SubjectName = s.Name
		for _, p := range s.Papers {
			if i := p.FindChapter(e.ChapterID); i >= 0 {
				d.ChapterName = p.Chapters[i].Name
				return d
			}
		}
		return d
	}
	return d
}

type NewExam struct {
	Name      string `json:"name" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	ChapterID string `json:"chapter_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	return validate.Struct(ne)
}

func (ne NewExam) Exam(now time.Time) Exam {
	date, _ := time.Parse("2006-01-02", ne.Date)
	return Exam{
		ID:        uuid.NewString(),
		Name:      ne.Name,
		SubjectID: ne.SubjectID,
		ChapterID: ne.ChapterID,
		Date:      date,
		CreatedAt: now,
	}
}

type UpdateExam struct {
	Name        string `json:"name"`
	SubjectID   string `json:"subject_id"`
	ChapterID   string `json:"chapter_id"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	IsCompleted *bool  `json:"is_completed"`
}

func (ue *UpdateExam) Validate(validate *validator.Validate) error {
	ue.Name = core.CleanString(ue.Name)
	return validate.Struct(ue)
}

// Apply merges the update into orig, returning the updated copy.
func (ue UpdateExam) Apply(orig Exam) Exam {
	if ue.Name != "" {
		orig.Name = ue.Name
	}
	if ue.SubjectID != "" {
		orig.SubjectID = ue.SubjectID
	}
	if ue.ChapterID != "" {
		orig.ChapterID = ue.ChapterID
	}
	if ue.Date != "" {
		if date, err := time.Parse("2006-01-02", ue.Date); err == nil {
			orig.Date = date
		}
	}
	if ue.IsCompleted != nil {
		orig.IsCompleted = *ue.IsCompleted
	}
	return orig
}
