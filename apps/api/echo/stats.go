package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core/stats"
)

type statsApi struct {
	svc *stats.Service
}

func registerStatsAPI(e *echo.Echo, jwt echo.MiddlewareFunc, svc *stats.Service) {
	api := statsApi{svc: svc}

	e.GET("/user/statistics", api.userStatistics, jwt)

	ag := e.Group("/admin", jwt, adminMiddleware())
	ag.GET("/dashboard-stats", api.dashboard)
	ag.GET("/statistics", api.adminStatistics)
}

func (api *statsApi) dashboard(ctx echo.Context) error {
	dash, err := api.svc.DashboardStats(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *statsApi) adminStatistics(ctx echo.Context) error {
	st, err := api.svc.AdminStatistics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing admin statistics")
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *statsApi) userStatistics(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	st, err := api.svc.UserStatistics(ctx.Request().Context(), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "computing user statistics")
	}
	return ctx.JSON(http.StatusOK, st)
}
