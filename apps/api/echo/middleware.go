package echoapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/stats"
)

const objectContextKey = "object"

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// objectMiddleware loads the entity identified by the `:id` path param and stores it in the context.
// Non-numeric ids are reported as not found.
func objectMiddleware(load func(ctx context.Context, id int) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := strconv.Atoi(ctx.Param("id"))
			if err != nil || id <= 0 {
				return errHttpNotFound
			}
			obj, err := load(ctx.Request().Context(), id)
			if err != nil {
				if core.IsNotFound(err) {
					return err
				}
				return errors.Wrap(err, "loading object")
			}
			ctx.Set(objectContextKey, obj)
			return next(ctx)
		}
	}
}

// invalidateStatsMiddleware drops cached statistics after every successful write.
func invalidateStatsMiddleware(svc *stats.Service, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				return err
			}
			if ctx.Request().Method != http.MethodGet && ctx.Response().Status < http.StatusBadRequest {
				if err := svc.Invalidate(ctx.Request().Context()); err != nil {
					logger.Warn("invalidating stats cache", err)
				}
			}
			return nil
		}
	}
}
