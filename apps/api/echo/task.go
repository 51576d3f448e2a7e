package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/task"
)

type taskApi struct {
	deps ServerDeps
}

func registerTaskAPI(g *echo.Group, deps ServerDeps) {
	api := taskApi{deps: deps}

	tg := g.Group("/tasks")
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)

	tg.POST("/:id/start", api.startTimer)
	tg.POST("/:id/stop", api.stopTimer)
	tg.POST("/:id/logs", api.addLog)
	tg.PUT("/:id/logs/:logID", api.editLog)
	tg.DELETE("/:id/logs/:logID", api.deleteLog)

	ag := g.Group("/analytics")
	ag.GET("/daily", api.dailyAnalytics)
	ag.GET("/weekly", api.weeklyAnalytics)
	ag.GET("/monthly", api.monthlyAnalytics)
	ag.GET("/goal", api.goalProgress)
}

func (api *taskApi) dispatch(ctx echo.Context, s *store.Store, cmd store.Command) error {
	if err := s.Dispatch(cmd); err != nil {
		switch errors.Cause(err) {
		case store.ErrNotFound, task.ErrNotFound, task.ErrLogNotFound:
			return errHttpNotFound
		case task.ErrAlreadyRunning, task.ErrNotRunning, task.ErrInvalidRange:
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "dispatching command")
	}
	return nil
}

// Handlers

// query lists tasks, optionally bounded to ?from=&to= (on the task's date).
func (api *taskApi) query(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	dr := new(DateRange)
	dr.Bind(ctx)

	tasks := s.Tree().Tasks
	if dr.From.IsZero() && dr.To.IsZero() {
		return ctx.JSON(http.StatusOK, tasks)
	}

	filtered := make([]task.StudyTask, 0, len(tasks))
	for _, t := range tasks {
		day := t.Day()
		if !dr.From.IsZero() && day.Before(task.Day(dr.From)) {
			continue
		}
		if !dr.To.IsZero() && day.After(task.Day(dr.To)) {
			continue
		}
		filtered = append(filtered, t)
	}
	return ctx.JSON(http.StatusOK, filtered)
}

func (api *taskApi) create(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	tsk := data.Task(time.Now().UTC())
	if err := api.dispatch(ctx, s, store.AddTask{Task: tsk}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tsk)
}

func (api *taskApi) update(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	tree := s.Tree()
	i := tree.FindTask(ctx.Param("id"))
	if i < 0 {
		return errHttpNotFound
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	tsk := data.Apply(tree.Tasks[i], time.Now().UTC())
	if err := api.dispatch(ctx, s, store.UpdateTask{Task: tsk}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tsk)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	if err := api.dispatch(ctx, s, store.DeleteTask{TaskID: ctx.Param("id")}); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) startTimer(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.StartTimer{TaskID: ctx.Param("id"), Now: time.Now().UTC()}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return api.respondWithTask(ctx, s, cmd.TaskID)
}

func (api *taskApi) stopTimer(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.StopTimer{TaskID: ctx.Param("id"), Now: time.Now().UTC()}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return api.respondWithTask(ctx, s, cmd.TaskID)
}

func (api *taskApi) addLog(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data TimeLogRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TimeLogRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	cmd := store.AddTimeLog{TaskID: ctx.Param("id"), Start: data.Start, End: data.End}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return api.respondWithTask(ctx, s, cmd.TaskID)
}

func (api *taskApi) editLog(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data TimeLogRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TimeLogRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	cmd := store.EditTimeLog{TaskID: ctx.Param("id"), LogID: ctx.Param("logID"), Start: data.Start, End: data.End}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return api.respondWithTask(ctx, s, cmd.TaskID)
}

func (api *taskApi) deleteLog(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteTimeLog{TaskID: ctx.Param("id"), LogID: ctx.Param("logID")}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return api.respondWithTask(ctx, s, cmd.TaskID)
}

func (api *taskApi) respondWithTask(ctx echo.Context, s *store.Store, taskID string) error {
	tree := s.Tree()
	i := tree.FindTask(taskID)
	if i < 0 {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, tree.Tasks[i])
}

// Analytics

// dailyAnalytics defaults to the last 7 days.
func (api *taskApi) dailyAnalytics(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	dr := new(DateRange)
	dr.Bind(ctx)
	if dr.To.IsZero() {
		dr.To = now
	}
	if dr.From.IsZero() {
		dr.From = dr.To.AddDate(0, 0, -6)
	}

	return ctx.JSON(http.StatusOK, task.BucketByDay(s.Tree().Tasks, dr.From, dr.To, now))
}

// weeklyAnalytics defaults to the last 4 weeks.
func (api *taskApi) weeklyAnalytics(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	dr := new(DateRange)
	dr.Bind(ctx)
	if dr.To.IsZero() {
		dr.To = now
	}
	if dr.From.IsZero() {
		dr.From = dr.To.AddDate(0, 0, -7*3)
	}

	return ctx.JSON(http.StatusOK, task.BucketByWeek(s.Tree().Tasks, dr.From, dr.To, now))
}

// monthlyAnalytics defaults to the last 6 months.
func (api *taskApi) monthlyAnalytics(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	dr := new(DateRange)
	dr.Bind(ctx)
	if dr.To.IsZero() {
		dr.To = now
	}
	if dr.From.IsZero() {
		dr.From = dr.To.AddDate(0, -5, 0)
	}

	return ctx.JSON(http.StatusOK, task.BucketByMonth(s.Tree().Tasks, dr.From, dr.To, now))
}

func (api *taskApi) goalProgress(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	tree := s.Tree()
	progress := task.WeeklyGoalProgress(tree.Tasks, tree.Settings.WeeklyStudyGoalHours, time.Now().UTC())
	return ctx.JSON(http.StatusOK, progress)
}

type TimeLogRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

func (tr TimeLogRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(tr)
}
