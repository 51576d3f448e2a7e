package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/store"
)

// verifiedMiddleware gates study data behind a verified email address.
func verifiedMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if !claims.EmailVerified {
				return errEmailNotVerified
			}
			return next(ctx)
		}
	}
}

// getContextStore returns the authenticated user's study data store.
func getContextStore(ctx echo.Context, stores *store.Manager) (*store.Store, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting context claims")
	}
	s, err := stores.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return nil, errors.Wrap(err, "getting study data store")
	}
	return s, nil
}
