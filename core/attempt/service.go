package attempt

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/catalog"
)

var (
	// errors
	ErrAlreadyAttempted = errors.New("You have already attempted this quiz")
	ErrQuizInactive     = errors.New("This quiz is not currently active")
	ErrNoAnswers        = errors.New("No answers provided")
)

type (
	Repository interface {
		// CreateScore fails with ErrAlreadyAttempted when the user already has a score for the quiz.
		CreateScore(ctx context.Context, sc Score) (Score, error)
		QueryScores(ctx context.Context, filter ScoreFilter) ([]Score, error)
	}

	// Catalog is the read side of the catalog the engine depends on.
	Catalog interface {
		GetQuiz(ctx context.Context, id int) (catalog.Quiz, error)
		QueryQuestions(ctx context.Context, quizID int) ([]catalog.Question, error)
		QuizPaths(ctx context.Context, filter catalog.QuizFilter) (map[int]catalog.QuizPath, error)
	}

	Service struct {
		repo    Repository
		catalog Catalog
		NowFunc func() time.Time
	}
)

func NewService(repo Repository, cat Catalog) *Service {
	return &Service{repo: repo, catalog: cat, NowFunc: time.Now}
}

func (svc *Service) now() time.Time {
	return svc.NowFunc().UTC()
}

// Submit scores the answers of user `userID` to quiz `quizID` and records the attempt.
// Every question of the quiz at submission time counts; unanswered questions are wrong.
func (svc *Service) Submit(ctx context.Context, quizID, userID int, sub Submission) (Result, error) {
	qz, err := svc.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	if !qz.IsActive(svc.now()) {
		return Result{}, core.NewValidationError(ErrQuizInactive)
	}

	prev, err := svc.repo.QueryScores(ctx, ScoreFilter{QuizID: quizID, UserID: userID, Limit: 1})
	if err != nil {
		return Result{}, err
	}
	if len(prev) > 0 {
		return Result{}, core.NewValidationError(ErrAlreadyAttempted)
	}
	if len(sub.Answers) == 0 {
		return Result{}, core.NewValidationError(ErrNoAnswers)
	}

	questions, err := svc.catalog.QueryQuestions(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	sc := Score{
		QuizID:         quizID,
		UserID:         userID,
		Timestamp:      svc.now(),
		TotalQuestions: len(questions),
	}
	for _, qn := range questions {
		if ans, ok := sub.Answers[qn.ID]; ok && ans == qn.CorrectOption {
			sc.TotalScored++
		}
	}

	// a concurrent submission may have won the race since the check above
	sc, err = svc.repo.CreateScore(ctx, sc)
	if err != nil {
		if errors.Cause(err) == ErrAlreadyAttempted {
			return Result{}, core.NewValidationError(ErrAlreadyAttempted)
		}
		return Result{}, err
	}
	return sc.Result(), nil
}

func (svc *Service) attemptedQuizIDs(ctx context.Context, userID int) (map[int]bool, error) {
	scores, err := svc.repo.QueryScores(ctx, ScoreFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	ids := make(map[int]bool, len(scores))
	for _, sc := range scores {
		ids[sc.QuizID] = true
	}
	return ids, nil
}

// ListAvailable returns the currently active quizzes that user `userID` has not attempted yet.
func (svc *Service) ListAvailable(ctx context.Context, userID int) ([]AvailableQuiz, error) {
	attempted, err := svc.attemptedQuizIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths, err := svc.catalog.QuizPaths(ctx, catalog.QuizFilter{Status: catalog.StatusActive})
	if err != nil {
		return nil, err
	}

	now := svc.now()
	res := make([]AvailableQuiz, 0, len(paths))
	for _, p := range paths {
		if attempted[p.Quiz.ID] || !p.Quiz.IsActive(now) {
			continue
		}
		res = append(res, AvailableQuiz{
			ID:             p.Quiz.ID,
			Title:          p.Quiz.Title,
			Subject:        p.Subject.Name,
			Chapter:        p.Chapter.Name,
			StartDate:      p.Quiz.StartDate,
			EndDate:        p.Quiz.EndDate,
			TimeDuration:   p.Quiz.TimeDuration,
			TotalQuestions: p.QuestionCount,
		})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// CountAvailable returns len(ListAvailable(userID)).
func (svc *Service) CountAvailable(ctx context.Context, userID int) (int, error) {
	quizzes, err := svc.ListAvailable(ctx, userID)
	return len(quizzes), err
}

// MyScores lists every attempt of user `userID`, most recent first.
func (svc *Service) MyScores(ctx context.Context, userID int) ([]ScoreRow, error) {
	scores, err := svc.repo.QueryScores(ctx, ScoreFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return []ScoreRow{}, nil
	}

	quizIDs := make([]int, 0, len(scores))
	for _, sc := range scores {
		quizIDs = append(quizIDs, sc.QuizID)
	}
	paths, err := svc.catalog.QuizPaths(ctx, catalog.QuizFilter{IDs: quizIDs})
	if err != nil {
		return nil, err
	}

	rows := make([]ScoreRow, 0, len(scores))
	for _, sc := range scores {
		p := paths[sc.QuizID]
		rows = append(rows, ScoreRow{
			ID:          sc.ID,
			QuizID:      sc.QuizID,
			Subject:     p.Subject.Name,
			Chapter:     p.Chapter.Name,
			QuizTitle:   p.Quiz.Title,
			Score:       sc.Fraction(),
			Percentage:  sc.Percentage(),
			AttemptTime: sc.Timestamp.Format(attemptTimeLayout),
		})
	}
	return rows, nil
}

// ScoresBetween returns the attempts of user `userID` made within [from, to], most recent first.
func (svc *Service) ScoresBetween(ctx context.Context, userID int, from, to time.Time) ([]Score, error) {
	return svc.repo.QueryScores(ctx, ScoreFilter{UserID: userID, From: from, To: to})
}

// Now returns the engine's current time.
func (svc *Service) Now() time.Time {
	return svc.now()
}
