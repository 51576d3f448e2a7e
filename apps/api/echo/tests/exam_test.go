package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/somo/core/exam"
	"github.com/trezcool/somo/core/study"
)

// ExamCardBody mirrors the enriched exam payload for tests.
type ExamCardBody struct {
	exam.Exam
	exam.Display
	CountdownSeconds int64 `json:"countdown_seconds"`
}

func Test_examApi_CRUD(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	var subj study.Subject
	do(t, app, http.MethodPost, "/v1/subjects", token, marchallObj(t, study.NewSubject{Name: "Chemistry"}), http.StatusCreated, &subj)
	var paper study.Paper
	do(t, app, http.MethodPost, fmt.Sprintf("/v1/subjects/%s/papers", subj.ID), token,
		marchallObj(t, study.NewPaper{Name: "Paper 2"}), http.StatusCreated, &paper)
	var chapter study.Chapter
	do(t, app, http.MethodPost, fmt.Sprintf("/v1/subjects/%s/papers/%s/chapters", subj.ID, paper.ID), token,
		marchallObj(t, study.NewChapter{Name: "Organic"}), http.StatusCreated, &chapter)

	// validation
	do(t, app, http.MethodPost, "/v1/exams", token,
		marchallObj(t, exam.NewExam{Name: "Mock", SubjectID: subj.ID, Date: "not-a-date"}), http.StatusBadRequest, nil)
	do(t, app, http.MethodPost, "/v1/exams", token,
		marchallObj(t, exam.NewExam{Name: "Mock", Date: "2030-06-01"}), http.StatusBadRequest, nil)

	future := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	var card ExamCardBody
	do(t, app, http.MethodPost, "/v1/exams", token,
		marchallObj(t, exam.NewExam{Name: "Mock", SubjectID: subj.ID, ChapterID: chapter.ID, Date: future}), http.StatusCreated, &card)
	if card.ID == "" || card.IsCompleted {
		t.Fatalf("unexpected exam: %+v", card)
	}
	if card.SubjectName != "Chemistry" || card.ChapterName != "Organic" {
		t.Errorf("unresolved names: %+v", card.Display)
	}
	if card.CountdownSeconds <= 0 {
		t.Errorf("CountdownSeconds = %d; want > 0", card.CountdownSeconds)
	}

	// countdown floors at zero for past dates
	var past ExamCardBody
	do(t, app, http.MethodPost, "/v1/exams", token,
		marchallObj(t, exam.NewExam{Name: "Last year", SubjectID: subj.ID, Date: "2020-01-01"}), http.StatusCreated, &past)
	if past.CountdownSeconds != 0 {
		t.Errorf("CountdownSeconds = %d; want 0", past.CountdownSeconds)
	}

	var cards []ExamCardBody
	do(t, app, http.MethodGet, "/v1/exams", token, nil, http.StatusOK, &cards)
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d; want 2", len(cards))
	}

	// complete
	completed := true
	do(t, app, http.MethodPut, "/v1/exams/"+card.ID, token,
		marchallObj(t, exam.UpdateExam{IsCompleted: &completed}), http.StatusOK, &card)
	if !card.IsCompleted || card.Name != "Mock" {
		t.Errorf("unexpected update: %+v", card)
	}

	// unknown id
	do(t, app, http.MethodPut, "/v1/exams/nope", token, marchallObj(t, exam.UpdateExam{Name: "X"}), http.StatusNotFound, nil)
	do(t, app, http.MethodDelete, "/v1/exams/nope", token, nil, http.StatusNotFound, nil)

	do(t, app, http.MethodDelete, "/v1/exams/"+past.ID, token, nil, http.StatusNoContent, nil)
	do(t, app, http.MethodGet, "/v1/exams", token, nil, http.StatusOK, &cards)
	if len(cards) != 1 {
		t.Errorf("len(cards) = %d; want 1", len(cards))
	}
}

func Test_examApi_danglingRefs(t *testing.T) {
	app := setup(t)
	_, token := verifiedUserToken(t)

	var subj study.Subject
	do(t, app, http.MethodPost, "/v1/subjects", token, marchallObj(t, study.NewSubject{Name: "History"}), http.StatusCreated, &subj)

	var card ExamCardBody
	do(t, app, http.MethodPost, "/v1/exams", token,
		marchallObj(t, exam.NewExam{Name: "Final", SubjectID: subj.ID, Date: "2030-06-01"}), http.StatusCreated, &card)
	if card.SubjectName != "History" || card.ChapterName != exam.UnknownRef {
		t.Fatalf("unexpected display: %+v", card.Display)
	}

	// deleting the subject leaves the exam dangling, not deleted
	do(t, app, http.MethodDelete, "/v1/subjects/"+subj.ID, token, nil, http.StatusNoContent, nil)

	var cards []ExamCardBody
	do(t, app, http.MethodGet, "/v1/exams", token, nil, http.StatusOK, &cards)
	if len(cards) != 1 {
		t.Fatalf("len(cards) = %d; want 1", len(cards))
	}
	if cards[0].SubjectName != exam.UnknownRef || cards[0].ChapterName != exam.UnknownRef {
		t.Errorf("unexpected display: %+v", cards[0].Display)
	}
}
