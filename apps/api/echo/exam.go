package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/exam"
	"github.com/trezcool/somo/core/store"
)

type examApi struct {
	deps ServerDeps
}

func registerExamAPI(g *echo.Group, deps ServerDeps) {
	api := examApi{deps: deps}

	eg := g.Group("/exams")
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

// ExamCard is an exam enriched with its resolved names and countdown.
type ExamCard struct {
	exam.Exam
	exam.Display
	CountdownSeconds int64 `json:"countdown_seconds"`
}

func newExamCard(e exam.Exam, tree store.EntityTree, now time.Time) ExamCard {
	return ExamCard{
		Exam:             e,
		Display:          e.Resolve(tree.Subjects),
		CountdownSeconds: int64(e.Countdown(now).Seconds()),
	}
}

// Handlers

func (api *examApi) query(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tree := s.Tree()
	cards := make([]ExamCard, 0, len(tree.Exams))
	for _, e := range tree.Exams {
		cards = append(cards, newExamCard(e, tree, now))
	}
	return ctx.JSON(http.StatusOK, cards)
}

func (api *examApi) create(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	now := time.Now().UTC()
	e := data.Exam(now)
	if err := s.Dispatch(store.AddExam{Exam: e}); err != nil {
		return errors.Wrap(err, "dispatching command")
	}
	return ctx.JSON(http.StatusCreated, newExamCard(e, s.Tree(), now))
}

func (api *examApi) update(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	tree := s.Tree()
	i := tree.FindExam(ctx.Param("id"))
	if i < 0 {
		return errHttpNotFound
	}

	var data exam.UpdateExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	e := data.Apply(tree.Exams[i])
	if err := s.Dispatch(store.UpdateExam{Exam: e}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "dispatching command")
	}
	return ctx.JSON(http.StatusOK, newExamCard(e, s.Tree(), time.Now().UTC()))
}

func (api *examApi) destroy(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	if err := s.Dispatch(store.DeleteExam{ExamID: ctx.Param("id")}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "dispatching command")
	}
	return ctx.NoContent(http.StatusNoContent)
}
