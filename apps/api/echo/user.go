package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/user"
)

type userApi struct {
	deps ServerDeps
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{deps: deps}

	ug := g.Group("/users")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ug.POST("/register", api.register)
	ug.POST("/login", api.login)
	ug.POST("/password-reset", api.resetPassword)
	ug.POST("/password-reset-confirm", api.confirmPasswordReset)
	ug.POST("/verify-email", api.verifyEmail)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/verify-resend", api.resendVerification)

	mg := ag.Group("/me")
	mg.GET("", api.retrieve)
	mg.PUT("", api.update)
	mg.PUT("/password", api.changePassword)
	mg.DELETE("", api.destroy)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.deps.Validate, api.deps.UserSvc); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Login
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Login")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := authenticate(data.Email, data.Password, api.deps)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.deps.Conf, claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.UserSvc.RequestPasswordReset(data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.deps.UserSvc.ResetPassword(data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) verifyEmail(ctx echo.Context) error {
	var data user.VerifyEmail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyEmail")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.VerifyEmail(data)
	if err != nil {
		return errors.Wrap(err, "verifying email")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) resendVerification(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err := api.deps.UserSvc.ResendVerification(claims.Email); err != nil {
		return errors.Wrap(err, "resending verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification email sent."})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(usr, api.deps.Validate, api.deps.UserSvc); err != nil {
		return err
	}

	usr, err = api.deps.UserSvc.UpdateProfile(usr, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	ctx.Set(contextUserKey, usr)
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err = api.deps.UserSvc.ChangePassword(usr, data)
	if err != nil {
		return errors.Wrap(err, "changing password")
	}
	ctx.Set(contextUserKey, usr)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password changed."})
}

// destroy deletes the account and all of its study data; awaited on purpose.
func (api *userApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.deps.Stores.Remove(ctx.Request().Context(), usr.ID); err != nil && errors.Cause(err) != store.ErrTreeNotFound {
		return errors.Wrap(err, "deleting study data")
	}
	if err := api.deps.UserSvc.Delete(usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
