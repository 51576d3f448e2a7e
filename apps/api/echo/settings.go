package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/store"
)

type settingsApi struct {
	deps ServerDeps
}

func registerSettingsAPI(g *echo.Group, deps ServerDeps) {
	api := settingsApi{deps: deps}

	sg := g.Group("/settings")
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Tree().Settings)
}

func (api *settingsApi) update(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data UpdateSettingsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettingsRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	cmd := store.UpdateSettings{WeeklyStudyGoalHours: data.WeeklyStudyGoalHours}
	if err := s.Dispatch(cmd); err != nil {
		return errors.Wrap(err, "dispatching command")
	}
	return ctx.JSON(http.StatusOK, s.Tree().Settings)
}

type UpdateSettingsRequest struct {
	WeeklyStudyGoalHours float64 `json:"weekly_study_goal_hours" validate:"required,gt=0,lte=168"`
}

func (us UpdateSettingsRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}
