package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/storage/database"
)

const (
	scoreColumns = "id, quiz_id, user_id, time_stamp_of_attempt, total_scored, total_questions"

	scoreQuizUserKey = "scores_quiz_user_key"
)

type dbScore struct {
	ID             int       `db:"id"`
	QuizID         int       `db:"quiz_id"`
	UserID         int       `db:"user_id"`
	Timestamp      time.Time `db:"time_stamp_of_attempt"`
	TotalScored    int       `db:"total_scored"`
	TotalQuestions int       `db:"total_questions"`
}

func (s dbScore) toScore() attempt.Score {
	return attempt.Score{
		ID:             s.ID,
		QuizID:         s.QuizID,
		UserID:         s.UserID,
		Timestamp:      s.Timestamp.UTC(),
		TotalScored:    s.TotalScored,
		TotalQuestions: s.TotalQuestions,
	}
}

type scoreRepository struct {
	db *sqlx.DB
}

func NewScoreRepository(db *sqlx.DB) attempt.Repository {
	return &scoreRepository{db: db}
}

// CreateScore relies on the (quiz_id, user_id) unique constraint to reject concurrent duplicates.
func (repo *scoreRepository) CreateScore(ctx context.Context, sc attempt.Score) (attempt.Score, error) {
	const q = `INSERT INTO scores (quiz_id, user_id, time_stamp_of_attempt, total_scored, total_questions)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := repo.db.GetContext(ctx, &sc.ID, q, sc.QuizID, sc.UserID, sc.Timestamp, sc.TotalScored, sc.TotalQuestions)
	if err != nil {
		if database.IsUniqueViolation(err, scoreQuizUserKey) {
			return attempt.Score{}, attempt.ErrAlreadyAttempted
		}
		return attempt.Score{}, errors.Wrap(err, "inserting score")
	}
	return sc, nil
}

func (repo *scoreRepository) QueryScores(ctx context.Context, filter attempt.ScoreFilter) ([]attempt.Score, error) {
	var cond conditions
	if filter.UserID != 0 {
		cond.add("user_id = ?", filter.UserID)
	}
	if filter.QuizID != 0 {
		cond.add("quiz_id = ?", filter.QuizID)
	}
	if !filter.From.IsZero() {
		cond.add("time_stamp_of_attempt >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		cond.add("time_stamp_of_attempt <= ?", filter.To)
	}
	q := "SELECT " + scoreColumns + " FROM scores" + cond.where() + " ORDER BY time_stamp_of_attempt DESC, id DESC"
	q += cond.limit(filter.Limit)

	var rows []dbScore
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "selecting scores")
	}
	scores := make([]attempt.Score, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, row.toScore())
	}
	return scores, nil
}
