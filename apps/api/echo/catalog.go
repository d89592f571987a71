package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core/catalog"
)

var (
	errSubjectNotInCtx  = errors.New("subject object not found in echo.Context")
	errChapterNotInCtx  = errors.New("chapter object not found in echo.Context")
	errQuizNotInCtx     = errors.New("quiz object not found in echo.Context")
	errQuestionNotInCtx = errors.New("question object not found in echo.Context")
)

type catalogApi struct {
	svc *catalog.Service
}

// registerCatalogAPI mounts the Subject → Chapter → Quiz → Question CRUD.
// Any authenticated user may read; writes are restricted to admins.
func registerCatalogAPI(e *echo.Echo, jwt, invalidate echo.MiddlewareFunc, svc *catalog.Service) {
	api := catalogApi{svc: svc}
	admin := adminMiddleware()

	sg := e.Group("/subjects", jwt)
	sg.GET("", api.querySubjects)
	sg.POST("", api.createSubject, admin, invalidate)
	sdg := sg.Group("/:id", objectMiddleware(api.loadSubject))
	sdg.GET("", api.retrieveSubject)
	sdg.PUT("", api.updateSubject, admin, invalidate)
	sdg.DELETE("", api.destroySubject, admin, invalidate)
	sdg.GET("/chapters", api.queryChapters)
	sdg.POST("/chapters", api.createChapter, admin, invalidate)

	cg := e.Group("/chapters/:id", jwt, objectMiddleware(api.loadChapter))
	cg.GET("", api.retrieveChapter)
	cg.PUT("", api.updateChapter, admin, invalidate)
	cg.DELETE("", api.destroyChapter, admin, invalidate)
	cg.GET("/quizzes", api.queryQuizzes)
	cg.POST("/quizzes", api.createQuiz, admin, invalidate)

	qg := e.Group("/quizzes/:id", jwt, objectMiddleware(api.loadQuiz))
	qg.GET("", api.retrieveQuiz)
	qg.PUT("", api.updateQuiz, admin, invalidate)
	qg.DELETE("", api.destroyQuiz, admin, invalidate)
	qg.GET("/questions", api.queryQuestions)
	qg.POST("/questions", api.createQuestion, admin, invalidate)

	qng := e.Group("/questions/:id", jwt, objectMiddleware(api.loadQuestion))
	qng.GET("", api.retrieveQuestion)
	qng.PUT("", api.updateQuestion, admin, invalidate)
	qng.DELETE("", api.destroyQuestion, admin, invalidate)
}

// loaders

func (api *catalogApi) loadSubject(ctx context.Context, id int) (interface{}, error) {
	return api.svc.GetSubject(ctx, id)
}

func (api *catalogApi) loadChapter(ctx context.Context, id int) (interface{}, error) {
	return api.svc.GetChapter(ctx, id)
}

func (api *catalogApi) loadQuiz(ctx context.Context, id int) (interface{}, error) {
	return api.svc.GetQuiz(ctx, id)
}

func (api *catalogApi) loadQuestion(ctx context.Context, id int) (interface{}, error) {
	return api.svc.GetQuestion(ctx, id)
}

func ctxSubject(ctx echo.Context) (catalog.Subject, error) {
	if sub, ok := ctx.Get(objectContextKey).(catalog.Subject); ok {
		return sub, nil
	}
	return catalog.Subject{}, errSubjectNotInCtx
}

func ctxChapter(ctx echo.Context) (catalog.Chapter, error) {
	if chap, ok := ctx.Get(objectContextKey).(catalog.Chapter); ok {
		return chap, nil
	}
	return catalog.Chapter{}, errChapterNotInCtx
}

func ctxQuiz(ctx echo.Context) (catalog.Quiz, error) {
	if qz, ok := ctx.Get(objectContextKey).(catalog.Quiz); ok {
		return qz, nil
	}
	return catalog.Quiz{}, errQuizNotInCtx
}

func ctxQuestion(ctx echo.Context) (catalog.Question, error) {
	if qn, ok := ctx.Get(objectContextKey).(catalog.Question); ok {
		return qn, nil
	}
	return catalog.Question{}, errQuestionNotInCtx
}

// Subjects

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), bindOrdering(ctx)...)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *catalogApi) createSubject(ctx echo.Context) error {
	var data catalog.SubjectInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectInput")
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	sub, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) updateSubject(ctx echo.Context) error {
	sub, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	var data catalog.SubjectInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubjectInput")
	}

	sub, err = api.svc.UpdateSubject(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) destroySubject(ctx echo.Context) error {
	sub, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSubject(ctx.Request().Context(), sub.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Chapters

func (api *catalogApi) queryChapters(ctx echo.Context) error {
	sub, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	chapters, err := api.svc.QueryChapters(ctx.Request().Context(), sub, bindOrdering(ctx)...)
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *catalogApi) createChapter(ctx echo.Context) error {
	sub, err := ctxSubject(ctx)
	if err != nil {
		return err
	}
	var data catalog.ChapterInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChapterInput")
	}

	chap, err := api.svc.CreateChapter(ctx.Request().Context(), sub, data)
	if err != nil {
		return errors.Wrap(err, "creating chapter")
	}
	return ctx.JSON(http.StatusCreated, chap)
}

func (api *catalogApi) retrieveChapter(ctx echo.Context) error {
	chap, err := ctxChapter(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chap)
}

func (api *catalogApi) updateChapter(ctx echo.Context) error {
	chap, err := ctxChapter(ctx)
	if err != nil {
		return err
	}
	var data catalog.ChapterInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChapterInput")
	}

	chap, err = api.svc.UpdateChapter(ctx.Request().Context(), chap, data)
	if err != nil {
		return errors.Wrap(err, "updating chapter")
	}
	return ctx.JSON(http.StatusOK, chap)
}

func (api *catalogApi) destroyChapter(ctx echo.Context) error {
	chap, err := ctxChapter(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteChapter(ctx.Request().Context(), chap.ID); err != nil {
		return errors.Wrap(err, "deleting chapter")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Quizzes

func (api *catalogApi) queryQuizzes(ctx echo.Context) error {
	chap, err := ctxChapter(ctx)
	if err != nil {
		return err
	}
	quizzes, err := api.svc.QueryQuizzes(ctx.Request().Context(), chap, bindOrdering(ctx)...)
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	now := api.svc.Now()
	views := make([]catalog.QuizView, 0, len(quizzes))
	for _, qz := range quizzes {
		views = append(views, qz.View(now))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *catalogApi) createQuiz(ctx echo.Context) error {
	chap, err := ctxChapter(ctx)
	if err != nil {
		return err
	}
	var data catalog.QuizInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizInput")
	}

	qz, err := api.svc.CreateQuiz(ctx.Request().Context(), chap, data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}
	return ctx.JSON(http.StatusCreated, qz.View(api.svc.Now()))
}

func (api *catalogApi) retrieveQuiz(ctx echo.Context) error {
	qz, err := ctxQuiz(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qz.View(api.svc.Now()))
}

func (api *catalogApi) updateQuiz(ctx echo.Context) error {
	qz, err := ctxQuiz(ctx)
	if err != nil {
		return err
	}
	var data catalog.QuizInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizInput")
	}

	qz, err = api.svc.UpdateQuiz(ctx.Request().Context(), qz, data)
	if err != nil {
		return errors.Wrap(err, "updating quiz")
	}
	return ctx.JSON(http.StatusOK, qz.View(api.svc.Now()))
}

func (api *catalogApi) destroyQuiz(ctx echo.Context) error {
	qz, err := ctxQuiz(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteQuiz(ctx.Request().Context(), qz.ID); err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Questions

func (api *catalogApi) queryQuestions(ctx echo.Context) error {
	qz, err := ctxQuiz(ctx)
	if err != nil {
		return err
	}

	questions, err := api.svc.QueryQuestions(ctx.Request().Context(), qz.ID)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	reveal := isContextAdmin(ctx)
	views := make([]catalog.QuestionView, 0, len(questions))
	for _, qn := range questions {
		views = append(views, qn.View(reveal))
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *catalogApi) createQuestion(ctx echo.Context) error {
	qz, err := ctxQuiz(ctx)
	if err != nil {
		return err
	}
	var data catalog.QuestionInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuestionInput")
	}

	qn, err := api.svc.CreateQuestion(ctx.Request().Context(), qz, data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}
	return ctx.JSON(http.StatusCreated, qn.View(true))
}

func (api *catalogApi) retrieveQuestion(ctx echo.Context) error {
	qn, err := ctxQuestion(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, qn.View(isContextAdmin(ctx)))
}

func (api *catalogApi) updateQuestion(ctx echo.Context) error {
	qn, err := ctxQuestion(ctx)
	if err != nil {
		return err
	}
	var data catalog.QuestionInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuestionInput")
	}

	qn, err = api.svc.UpdateQuestion(ctx.Request().Context(), qn, data)
	if err != nil {
		return errors.Wrap(err, "updating question")
	}
	return ctx.JSON(http.StatusOK, qn.View(true))
}

func (api *catalogApi) destroyQuestion(ctx echo.Context) error {
	qn, err := ctxQuestion(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteQuestion(ctx.Request().Context(), qn.ID); err != nil {
		return errors.Wrap(err, "deleting question")
	}
	return ctx.NoContent(http.StatusNoContent)
}
