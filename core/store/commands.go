package store

import (
	"time"

	"github.com/trezcool/somo/core/exam"
	"github.com/trezcool/somo/core/note"
	"github.com/trezcool/somo/core/study"
	"github.com/trezcool/somo/core/task"
)

// Command is the closed set of tree mutations. Update commands carry full
// replacement values and replace by id within the parent's collection;
// callers build them from the current tree before dispatching.
type Command interface{ isCommand() }

type (
	// subjects
	AddSubject    struct{ Subject study.Subject }
	UpdateSubject struct{ Subject study.Subject }
	DeleteSubject struct{ SubjectID string }

	// papers
	AddPaper struct {
		SubjectID string
		Paper     study.Paper
	}
	UpdatePaper struct {
		SubjectID string
		Paper     study.Paper
	}
	DeletePaper struct {
		SubjectID string
		PaperID   string
	}

	// chapters
	AddChapter struct {
		SubjectID string
		PaperID   string
		Chapter   study.Chapter
	}
	UpdateChapter struct {
		SubjectID string
		PaperID   string
		Chapter   study.Chapter
	}
	DeleteChapter struct {
		SubjectID string
		PaperID   string
		ChapterID string
	}

	// chapter children
	AddActivity struct {
		SubjectID string
		PaperID   string
		ChapterID string
		Activity  study.Activity
	}
	UpdateActivity struct {
		SubjectID string
		PaperID   string
		ChapterID string
		Activity  study.Activity
	}
	DeleteActivity struct {
		SubjectID  string
		PaperID    string
		ChapterID  string
		ActivityID string
	}
	AddProgressItem struct {
		SubjectID string
		PaperID   string
		ChapterID string
		Item      study.ProgressItem
	}
	UpdateProgressItem struct {
		SubjectID string
		PaperID   string
		ChapterID string
		Item      study.ProgressItem
	}
	DeleteProgressItem struct {
		SubjectID string
		PaperID   string
		ChapterID string
		ItemID    string
	}
	AddChapterLink struct {
		SubjectID string
		PaperID   string
		ChapterID string
		Link      study.ChapterLink
	}
	DeleteChapterLink struct {
		SubjectID string
		PaperID   string
		ChapterID string
		LinkID    string
	}

	// tasks & time logs
	AddTask    struct{ Task task.StudyTask }
	UpdateTask struct{ Task task.StudyTask }
	DeleteTask struct{ TaskID string }
	StartTimer struct {
		TaskID string
		Now    time.Time
	}
	StopTimer struct {
		TaskID string
		Now    time.Time
	}
	AddTimeLog struct {
		TaskID string
		Start  time.Time
		End    time.Time
	}
	EditTimeLog struct {
		TaskID string
		LogID  string
		Start  time.Time
		End    time.Time
	}
	DeleteTimeLog struct {
		TaskID string
		LogID  string
	}

	// exams
	AddExam    struct{ Exam exam.Exam }
	UpdateExam struct{ Exam exam.Exam }
	DeleteExam struct{ ExamID string }

	// notes
	AddNote    struct{ Note note.Note }
	UpdateNote struct{ Note note.Note }
	DeleteNote struct{ NoteID string }
	AddNoteLink struct {
		NoteID string
		Link   note.NoteLink
	}
	DeleteNoteLink struct {
		NoteID string
		LinkID string
	}

	// resources
	AddResource    struct{ Resource note.Resource }
	UpdateResource struct{ Resource note.Resource }
	DeleteResource struct{ ResourceID string }
	AddResourceLink struct {
		ResourceID string
		Link       note.ResourceLink
	}
	DeleteResourceLink struct {
		ResourceID string
		LinkID     string
	}
	ReorderResources struct{ IDs []string }

	// settings
	UpdateSettings  struct{ WeeklyStudyGoalHours float64 }
	MarkWeekGoalMet struct{ At time.Time }
)

func (AddSubject) isCommand()         {}
func (UpdateSubject) isCommand()      {}
func (DeleteSubject) isCommand()      {}
func (AddPaper) isCommand()           {}
func (UpdatePaper) isCommand()        {}
func (DeletePaper) isCommand()        {}
func (AddChapter) isCommand()         {}
func (UpdateChapter) isCommand()      {}
func (DeleteChapter) isCommand()      {}
func (AddActivity) isCommand()        {}
func (UpdateActivity) isCommand()     {}
func (DeleteActivity) isCommand()     {}
func (AddProgressItem) isCommand()    {}
func (UpdateProgressItem) isCommand() {}
func (DeleteProgressItem) isCommand() {}
func (AddChapterLink) isCommand()     {}
func (DeleteChapterLink) isCommand()  {}
func (AddTask) isCommand()            {}
func (UpdateTask) isCommand()         {}
func (DeleteTask) isCommand()         {}
func (StartTimer) isCommand()         {}
func (StopTimer) isCommand()          {}
func (AddTimeLog) isCommand()         {}
func (EditTimeLog) isCommand()        {}
func (DeleteTimeLog) isCommand()      {}
func (AddExam) isCommand()            {}
func (UpdateExam) isCommand()         {}
func (DeleteExam) isCommand()         {}
func (AddNote) isCommand()            {}
func (UpdateNote) isCommand()         {}
func (DeleteNote) isCommand()         {}
func (AddNoteLink) isCommand()        {}
func (DeleteNoteLink) isCommand()     {}
func (AddResource) isCommand()        {}
func (UpdateResource) isCommand()     {}
func (DeleteResource) isCommand()     {}
func (AddResourceLink) isCommand()    {}
func (DeleteResourceLink) isCommand() {}
func (ReorderResources) isCommand()   {}
func (UpdateSettings) isCommand()     {}
func (MarkWeekGoalMet) isCommand()    {}
