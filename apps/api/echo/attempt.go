package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core/attempt"
)

type attemptApi struct {
	svc *attempt.Service
}

func registerAttemptAPI(e *echo.Echo, jwt, invalidate echo.MiddlewareFunc, svc *attempt.Service) {
	api := attemptApi{svc: svc}

	e.POST("/quizzes/:id/attempt", api.submit, jwt, invalidate)
	e.GET("/available-quizzes", api.available, jwt)
	e.GET("/my-scores", api.myScores, jwt)
}

func (api *attemptApi) submit(ctx echo.Context) error {
	quizID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || quizID <= 0 {
		return errHttpNotFound
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data attempt.Submission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}

	res, err := api.svc.Submit(ctx.Request().Context(), quizID, claims.UserID(), data)
	if err != nil {
		return errors.Wrap(err, "submitting attempt")
	}
	return ctx.JSON(http.StatusOK, AttemptResponse{
		Message: "Quiz submitted successfully",
		Score:   strconv.Itoa(res.Scored) + "/" + strconv.Itoa(res.Total),
		Result:  res,
	})
}

func (api *attemptApi) available(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	quizzes, err := api.svc.ListAvailable(ctx.Request().Context(), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "listing available quizzes")
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *attemptApi) myScores(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	rows, err := api.svc.MyScores(ctx.Request().Context(), claims.UserID())
	if err != nil {
		return errors.Wrap(err, "listing scores")
	}
	return ctx.JSON(http.StatusOK, rows)
}

type AttemptResponse struct {
	attempt.Result
	Message string `json:"message"`
	Score   string `json:"score"`
}
