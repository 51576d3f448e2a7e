package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/study"
)

type studyApi struct {
	deps ServerDeps
}

func registerStudyAPI(g *echo.Group, deps ServerDeps) {
	api := studyApi{deps: deps}

	sg := g.Group("/subjects")
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)

	pg := sg.Group("/:id/papers")
	pg.POST("", api.createPaper)
	pg.PUT("/:paperID", api.updatePaper)
	pg.DELETE("/:paperID", api.destroyPaper)

	cg := pg.Group("/:paperID/chapters")
	cg.POST("", api.createChapter)
	cg.PUT("/:chapterID", api.updateChapter)
	cg.DELETE("/:chapterID", api.destroyChapter)
	cg.POST("/:chapterID/summary", api.summarizeChapter)

	ag := cg.Group("/:chapterID/activities")
	ag.POST("", api.createActivity)
	ag.PUT("/:activityID", api.updateActivity)
	ag.DELETE("/:activityID", api.destroyActivity)

	prg := cg.Group("/:chapterID/progress-items")
	prg.POST("", api.createProgressItem)
	prg.PUT("/:itemID", api.updateProgressItem)
	prg.DELETE("/:itemID", api.destroyProgressItem)

	lg := cg.Group("/:chapterID/links")
	lg.POST("", api.createLink)
	lg.DELETE("/:linkID", api.destroyLink)
}

// subject lookups shared by the nested handlers

func (api *studyApi) subject(ctx echo.Context, s *store.Store) (study.Subject, error) {
	tree := s.Tree()
	if i := tree.FindSubject(ctx.Param("id")); i >= 0 {
		return tree.Subjects[i], nil
	}
	return study.Subject{}, errHttpNotFound
}

func (api *studyApi) paper(ctx echo.Context, s *store.Store) (study.Paper, error) {
	subj, err := api.subject(ctx, s)
	if err != nil {
		return study.Paper{}, err
	}
	if i := subj.FindPaper(ctx.Param("paperID")); i >= 0 {
		return subj.Papers[i], nil
	}
	return study.Paper{}, errHttpNotFound
}

func (api *studyApi) chapter(ctx echo.Context, s *store.Store) (study.Chapter, error) {
	paper, err := api.paper(ctx, s)
	if err != nil {
		return study.Chapter{}, err
	}
	if i := paper.FindChapter(ctx.Param("chapterID")); i >= 0 {
		return paper.Chapters[i], nil
	}
	return study.Chapter{}, errHttpNotFound
}

func (api *studyApi) dispatch(ctx echo.Context, s *store.Store, cmd store.Command) error {
	if err := s.Dispatch(cmd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "dispatching command")
	}
	return nil
}

// Handlers

func (api *studyApi) query(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Tree().Subjects)
}

func (api *studyApi) create(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	subj := data.Subject(time.Now().UTC())
	if err := api.dispatch(ctx, s, store.AddSubject{Subject: subj}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *studyApi) update(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	orig, err := api.subject(ctx, s)
	if err != nil {
		return err
	}

	var data study.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	subj := data.Apply(orig, time.Now().UTC())
	if err := api.dispatch(ctx, s, store.UpdateSubject{Subject: subj}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *studyApi) destroy(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	if err := api.dispatch(ctx, s, store.DeleteSubject{SubjectID: ctx.Param("id")}); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) createPaper(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewPaper
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPaper")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	paper := data.Paper()
	if err := api.dispatch(ctx, s, store.AddPaper{SubjectID: ctx.Param("id"), Paper: paper}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, paper)
}

func (api *studyApi) updatePaper(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	orig, err := api.paper(ctx, s)
	if err != nil {
		return err
	}

	var data study.UpdatePaper
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePaper")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	paper := data.Apply(orig)
	if err := api.dispatch(ctx, s, store.UpdatePaper{SubjectID: ctx.Param("id"), Paper: paper}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, paper)
}

func (api *studyApi) destroyPaper(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeletePaper{SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID")}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) createChapter(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	chapter := data.Chapter()
	cmd := store.AddChapter{SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), Chapter: chapter}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, chapter)
}

func (api *studyApi) updateChapter(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	orig, err := api.chapter(ctx, s)
	if err != nil {
		return err
	}

	var data study.UpdateChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChapter")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	chapter := data.Apply(orig)
	cmd := store.UpdateChapter{SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), Chapter: chapter}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapter)
}

func (api *studyApi) destroyChapter(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteChapter{SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID")}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// summarizeChapter condenses the chapter's activity list via the configured
// language model. The summary is returned, not stored.
func (api *studyApi) summarizeChapter(ctx echo.Context) error {
	if api.deps.Summarizer == nil {
		return errSummarizerDisabled
	}

	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	chapter, err := api.chapter(ctx, s)
	if err != nil {
		return err
	}
	if len(chapter.Activities) == 0 {
		return core.NewValidationError(errors.New("chapter has no activities to summarize"))
	}

	summary, err := api.deps.Summarizer.Summarize(ctx.Request().Context(), chapter.ActivityText())
	if err != nil {
		return errors.Wrap(err, "summarizing chapter")
	}
	return ctx.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}

func (api *studyApi) createActivity(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	activity := data.Activity()
	cmd := store.AddActivity{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		Activity: activity,
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, activity)
}

func (api *studyApi) updateActivity(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	activity := data.Activity(ctx.Param("activityID"))
	cmd := store.UpdateActivity{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		Activity: activity,
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, activity)
}

func (api *studyApi) destroyActivity(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteActivity{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		ActivityID: ctx.Param("activityID"),
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) createProgressItem(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewProgressItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgressItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	item := data.ProgressItem()
	cmd := store.AddProgressItem{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		Item: item,
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *studyApi) updateProgressItem(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.UpdateProgressItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProgressItem")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	item := data.ProgressItem(ctx.Param("itemID"))
	cmd := store.UpdateProgressItem{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		Item: item,
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *studyApi) destroyProgressItem(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteProgressItem{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		ItemID: ctx.Param("itemID"),
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) createLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data study.NewChapterLink
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapterLink")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	link := data.Link()
	cmd := store.AddChapterLink{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		Link: link,
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *studyApi) destroyLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteChapterLink{
		SubjectID: ctx.Param("id"), PaperID: ctx.Param("paperID"), ChapterID: ctx.Param("chapterID"),
		LinkID: ctx.Param("linkID"),
	}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type SummaryResponse struct {
	Summary string `json:"summary"`
}
