package store

import (
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/note"
	"github.com/trezcool/somo/core/study"
	"github.com/trezcool/somo/core/task"
)

func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func deleteAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// withSubject replaces the subject at id with fn's result, copying only the
// subjects slice on the way.
func withSubject(t EntityTree, subjectID string, fn func(study.Subject) (study.Subject, error)) (EntityTree, error) {
	i := t.FindSubject(subjectID)
	if i < 0 {
		return t, errors.Wrap(ErrNotFound, "subject "+subjectID)
	}
	s, err := fn(t.Subjects[i])
	if err != nil {
		return t, err
	}
	t.Subjects = cloneSlice(t.Subjects)
	t.Subjects[i] = s
	return t, nil
}

func withPaper(t EntityTree, subjectID, paperID string, fn func(study.Paper) (study.Paper, error)) (EntityTree, error) {
	return withSubject(t, subjectID, func(s study.Subject) (study.Subject, error) {
		i := s.FindPaper(paperID)
		if i < 0 {
			return s, errors.Wrap(ErrNotFound, "paper "+paperID)
		}
		p, err := fn(s.Papers[i])
		if err != nil {
			return s, err
		}
		s.Papers = cloneSlice(s.Papers)
		s.Papers[i] = p
		return s, nil
	})
}

func withChapter(t EntityTree, subjectID, paperID, chapterID string, fn func(study.Chapter) (study.Chapter, error)) (EntityTree, error) {
	return withPaper(t, subjectID, paperID, func(p study.Paper) (study.Paper, error) {
		i := p.FindChapter(chapterID)
		if i < 0 {
			return p, errors.Wrap(ErrNotFound, "chapter "+chapterID)
		}
		c, err := fn(p.Chapters[i])
		if err != nil {
			return p, err
		}
		p.Chapters = cloneSlice(p.Chapters)
		p.Chapters[i] = c
		return p, nil
	})
}

func withTask(t EntityTree, taskID string, fn func(task.StudyTask) (task.StudyTask, error)) (EntityTree, error) {
	i := t.FindTask(taskID)
	if i < 0 {
		return t, errors.Wrap(task.ErrNotFound, taskID)
	}
	tsk, err := fn(t.Tasks[i])
	if err != nil {
		return t, err
	}
	t.Tasks = cloneSlice(t.Tasks)
	t.Tasks[i] = tsk
	return t, nil
}

func withNote(t EntityTree, noteID string, fn func(note.Note) (note.Note, error)) (EntityTree, error) {
	i := t.FindNote(noteID)
	if i < 0 {
		return t, errors.Wrap(ErrNotFound, "note "+noteID)
	}
	n, err := fn(t.Notes[i])
	if err != nil {
		return t, err
	}
	t.Notes = cloneSlice(t.Notes)
	t.Notes[i] = n
	return t, nil
}

func withResource(t EntityTree, resourceID string, fn func(note.Resource) (note.Resource, error)) (EntityTree, error) {
	i := t.FindResource(resourceID)
	if i < 0 {
		return t, errors.Wrap(ErrNotFound, "resource "+resourceID)
	}
	r, err := fn(t.Resources[i])
	if err != nil {
		return t, err
	}
	t.Resources = cloneSlice(t.Resources)
	t.Resources[i] = r
	return t, nil
}

// apply reduces a command into a new tree. The switch is exhaustive over the
// closed Command set; an unknown command is a programming error.
func apply(t EntityTree, cmd Command) (EntityTree, error) {
	switch cmd := cmd.(type) {

	// subjects
	case AddSubject:
		t.Subjects = append(cloneSlice(t.Subjects), cmd.Subject)
		return t, nil
	case UpdateSubject:
		return withSubject(t, cmd.Subject.ID, func(study.Subject) (study.Subject, error) {
			return cmd.Subject, nil
		})
	case DeleteSubject:
		// descendants go with the subject; exams pointing at it are left dangling
		i := t.FindSubject(cmd.SubjectID)
		if i < 0 {
			return t, errors.Wrap(ErrNotFound, "subject "+cmd.SubjectID)
		}
		t.Subjects = deleteAt(t.Subjects, i)
		return t, nil

	// papers
	case AddPaper:
		return withSubject(t, cmd.SubjectID, func(s study.Subject) (study.Subject, error) {
			s.Papers = append(cloneSlice(s.Papers), cmd.Paper)
			return s, nil
		})
	case UpdatePaper:
		return withPaper(t, cmd.SubjectID, cmd.Paper.ID, func(study.Paper) (study.Paper, error) {
			return cmd.Paper, nil
		})
	case DeletePaper:
		return withSubject(t, cmd.SubjectID, func(s study.Subject) (study.Subject, error) {
			i := s.FindPaper(cmd.PaperID)
			if i < 0 {
				return s, errors.Wrap(ErrNotFound, "paper "+cmd.PaperID)
			}
			s.Papers = deleteAt(s.Papers, i)
			return s, nil
		})

	// chapters
	case AddChapter:
		return withPaper(t, cmd.SubjectID, cmd.PaperID, func(p study.Paper) (study.Paper, error) {
			p.Chapters = append(cloneSlice(p.Chapters), cmd.Chapter)
			return p, nil
		})
	case UpdateChapter:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.Chapter.ID, func(study.Chapter) (study.Chapter, error) {
			return cmd.Chapter, nil
		})
	case DeleteChapter:
		return withPaper(t, cmd.SubjectID, cmd.PaperID, func(p study.Paper) (study.Paper, error) {
			i := p.FindChapter(cmd.ChapterID)
			if i < 0 {
				return p, errors.Wrap(ErrNotFound, "chapter "+cmd.ChapterID)
			}
			p.Chapters = deleteAt(p.Chapters, i)
			return p, nil
		})

	// chapter children
	case AddActivity:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			c.Activities = append(cloneSlice(c.Activities), cmd.Activity)
			return c, nil
		})
	case UpdateActivity:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			i := c.FindActivity(cmd.Activity.ID)
			if i < 0 {
				return c, errors.Wrap(ErrNotFound, "activity "+cmd.Activity.ID)
			}
			c.Activities = cloneSlice(c.Activities)
			c.Activities[i] = cmd.Activity
			return c, nil
		})
	case DeleteActivity:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			i := c.FindActivity(cmd.ActivityID)
			if i < 0 {
				return c, errors.Wrap(ErrNotFound, "activity "+cmd.ActivityID)
			}
			c.Activities = deleteAt(c.Activities, i)
			return c, nil
		})
	case AddProgressItem:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			c.ProgressItems = append(cloneSlice(c.ProgressItems), cmd.Item)
			return c, nil
		})
	case UpdateProgressItem:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			i := c.FindProgressItem(cmd.Item.ID)
			if i < 0 {
				return c, errors.Wrap(ErrNotFound, "progress item "+cmd.Item.ID)
			}
			c.ProgressItems = cloneSlice(c.ProgressItems)
			c.ProgressItems[i] = cmd.Item
			return c, nil
		})
	case DeleteProgressItem:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			i := c.FindProgressItem(cmd.ItemID)
			if i < 0 {
				return c, errors.Wrap(ErrNotFound, "progress item "+cmd.ItemID)
			}
			c.ProgressItems = deleteAt(c.ProgressItems, i)
			return c, nil
		})
	case AddChapterLink:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			c.Links = append(cloneSlice(c.Links), cmd.Link)
			return c, nil
		})
	case DeleteChapterLink:
		return withChapter(t, cmd.SubjectID, cmd.PaperID, cmd.ChapterID, func(c study.Chapter) (study.Chapter, error) {
			i := c.FindLink(cmd.LinkID)
			if i < 0 {
				return c, errors.Wrap(ErrNotFound, "link "+cmd.LinkID)
			}
			c.Links = deleteAt(c.Links, i)
			return c, nil
		})

	// tasks & time logs
	case AddTask:
		t.Tasks = append(cloneSlice(t.Tasks), cmd.Task)
		return t, nil
	case UpdateTask:
		return withTask(t, cmd.Task.ID, func(task.StudyTask) (task.StudyTask, error) {
			return cmd.Task, nil
		})
	case DeleteTask:
		// the task's logs go with it
		i := t.FindTask(cmd.TaskID)
		if i < 0 {
			return t, errors.Wrap(task.ErrNotFound, cmd.TaskID)
		}
		t.Tasks = deleteAt(t.Tasks, i)
		return t, nil
	case StartTimer:
		return withTask(t, cmd.TaskID, func(tsk task.StudyTask) (task.StudyTask, error) {
			return task.StartTimer(tsk, cmd.Now)
		})
	case StopTimer:
		return withTask(t, cmd.TaskID, func(tsk task.StudyTask) (task.StudyTask, error) {
			return task.StopTimer(tsk, cmd.Now)
		})
	case AddTimeLog:
		return withTask(t, cmd.TaskID, func(tsk task.StudyTask) (task.StudyTask, error) {
			return task.AddManualLog(tsk, cmd.Start, cmd.End)
		})
	case EditTimeLog:
		return withTask(t, cmd.TaskID, func(tsk task.StudyTask) (task.StudyTask, error) {
			return task.EditLog(tsk, cmd.LogID, cmd.Start, cmd.End)
		})
	case DeleteTimeLog:
		return withTask(t, cmd.TaskID, func(tsk task.StudyTask) (task.StudyTask, error) {
			return task.DeleteLog(tsk, cmd.LogID), nil
		})

	// exams
	case AddExam:
		t.Exams = append(cloneSlice(t.Exams), cmd.Exam)
		return t, nil
	case UpdateExam:
		i := t.FindExam(cmd.Exam.ID)
		if i < 0 {
			return t, errors.Wrap(ErrNotFound, "exam "+cmd.Exam.ID)
		}
		t.Exams = cloneSlice(t.Exams)
		t.Exams[i] = cmd.Exam
		return t, nil
	case DeleteExam:
		i := t.FindExam(cmd.ExamID)
		if i < 0 {
			return t, errors.Wrap(ErrNotFound, "exam "+cmd.ExamID)
		}
		t.Exams = deleteAt(t.Exams, i)
		return t, nil

	// notes
	case AddNote:
		t.Notes = append(cloneSlice(t.Notes), cmd.Note)
		return t, nil
	case UpdateNote:
		return withNote(t, cmd.Note.ID, func(note.Note) (note.Note, error) {
			return cmd.Note, nil
		})
	case DeleteNote:
		i := t.FindNote(cmd.NoteID)
		if i < 0 {
			return t, errors.Wrap(ErrNotFound, "note "+cmd.NoteID)
		}
		t.Notes = deleteAt(t.Notes, i)
		return t, nil
	case AddNoteLink:
		return withNote(t, cmd.NoteID, func(n note.Note) (note.Note, error) {
			n.Links = append(cloneSlice(n.Links), cmd.Link)
			return n, nil
		})
	case DeleteNoteLink:
		return withNote(t, cmd.NoteID, func(n note.Note) (note.Note, error) {
			i := n.FindLink(cmd.LinkID)
			if i < 0 {
				return n, errors.Wrap(ErrNotFound, "link "+cmd.LinkID)
			}
			n.Links = deleteAt(n.Links, i)
			return n, nil
		})

	// resources
	case AddResource:
		t.Resources = append(cloneSlice(t.Resources), cmd.Resource)
		return t, nil
	case UpdateResource:
		return withResource(t, cmd.Resource.ID, func(note.Resource) (note.Resource, error) {
			return cmd.Resource, nil
		})
	case DeleteResource:
		i := t.FindResource(cmd.ResourceID)
		if i < 0 {
			return t, errors.Wrap(ErrNotFound, "resource "+cmd.ResourceID)
		}
		resources := deleteAt(t.Resources, i)
		// keep sibling orders dense
		for j := range resources {
			resources[j].Order = j + 1
		}
		t.Resources = resources
		return t, nil
	case AddResourceLink:
		return withResource(t, cmd.ResourceID, func(r note.Resource) (note.Resource, error) {
			r.Links = append(cloneSlice(r.Links), cmd.Link)
			return r, nil
		})
	case DeleteResourceLink:
		return withResource(t, cmd.ResourceID, func(r note.Resource) (note.Resource, error) {
			i := r.FindLink(cmd.LinkID)
			if i < 0 {
				return r, errors.Wrap(ErrNotFound, "link "+cmd.LinkID)
			}
			r.Links = deleteAt(r.Links, i)
			return r, nil
		})
	case ReorderResources:
		t.Resources = note.Reorder(t.Resources, cmd.IDs)
		return t, nil

	// settings
	case UpdateSettings:
		t.Settings.WeeklyStudyGoalHours = cmd.WeeklyStudyGoalHours
		return t, nil
	case MarkWeekGoalMet:
		t.Settings.LastWeekGoalMetAt = cmd.At
		return t, nil

	default:
		return t, errors.Errorf("unhandled command %T", cmd)
	}
}
