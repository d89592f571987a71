package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/geeky-hamster/Quizme/core/stats"
)

type (
	dbCounts struct {
		Subjects         int `db:"subjects"`
		Chapters         int `db:"chapters"`
		Quizzes          int `db:"quizzes"`
		Questions        int `db:"questions"`
		Users            int `db:"users"`
		Attempts         int `db:"attempts"`
		ActiveQuizzes    int `db:"active_quizzes"`
		CompletedQuizzes int `db:"completed_quizzes"`
	}

	dbEntry struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}

	dbActivity struct {
		ScoreID        int       `db:"score_id"`
		QuizID         int       `db:"quiz_id"`
		QuizTitle      string    `db:"quiz_title"`
		UserID         int       `db:"user_id"`
		UserFullName   string    `db:"user_full_name"`
		Timestamp      time.Time `db:"time_stamp_of_attempt"`
		TotalScored    int       `db:"total_scored"`
		TotalQuestions int       `db:"total_questions"`
	}

	dbSubjectAttempt struct {
		SubjectID      int      `db:"subject_id"`
		SubjectName    string   `db:"subject_name"`
		TotalScored    null.Int `db:"total_scored"`
		TotalQuestions null.Int `db:"total_questions"`
	}
)

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) stats.Repository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) Counts(ctx context.Context, now time.Time) (stats.Counts, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM subjects) AS subjects,
		(SELECT COUNT(*) FROM chapters) AS chapters,
		(SELECT COUNT(*) FROM quizzes) AS quizzes,
		(SELECT COUNT(*) FROM questions) AS questions,
		(SELECT COUNT(*) FROM users WHERE role <> 'admin') AS users,
		(SELECT COUNT(*) FROM scores) AS attempts,
		(SELECT COUNT(*) FROM quizzes WHERE status = 'active' AND start_date <= $1 AND end_date >= $1) AS active_quizzes,
		(SELECT COUNT(*) FROM quizzes WHERE status = 'expired') AS completed_quizzes`

	var row dbCounts
	if err := repo.db.GetContext(ctx, &row, q, now); err != nil {
		return stats.Counts{}, errors.Wrap(err, "counting")
	}
	return stats.Counts(row), nil
}

func (repo *statsRepository) latest(ctx context.Context, table string) (*stats.Entry, error) {
	var row dbEntry
	if err := get(ctx, repo.db, &row, errNoEntry, "SELECT id, name FROM "+table+" ORDER BY id DESC LIMIT 1"); err != nil {
		if err == errNoEntry {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "selecting latest from %s", table)
	}
	return &stats.Entry{ID: row.ID, Name: row.Name}, nil
}

var errNoEntry = errors.New("no entry")

func (repo *statsRepository) LatestSubject(ctx context.Context) (*stats.Entry, error) {
	return repo.latest(ctx, "subjects")
}

func (repo *statsRepository) LatestChapter(ctx context.Context) (*stats.Entry, error) {
	return repo.latest(ctx, "chapters")
}

func (repo *statsRepository) RecentActivity(ctx context.Context, userID, limit int) ([]stats.Activity, error) {
	var cond conditions
	if userID != 0 {
		cond.add("s.user_id = ?", userID)
	}
	q := `SELECT s.id AS score_id, s.quiz_id, q.title AS quiz_title, s.user_id, u.full_name AS user_full_name,
			s.time_stamp_of_attempt, s.total_scored, s.total_questions
		FROM scores s
		JOIN quizzes q ON q.id = s.quiz_id
		JOIN users u ON u.id = s.user_id` + cond.where() + " ORDER BY s.time_stamp_of_attempt DESC, s.id DESC"
	q += cond.limit(limit)

	var rows []dbActivity
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "selecting activity")
	}
	acts := make([]stats.Activity, 0, len(rows))
	for _, row := range rows {
		act := stats.Activity(row)
		act.Timestamp = act.Timestamp.UTC()
		acts = append(acts, act)
	}
	return acts, nil
}

func (repo *statsRepository) SubjectAttempts(ctx context.Context, userID int) ([]stats.SubjectAttempt, error) {
	// the user filter belongs to the join so that subjects without scores are kept
	scoreJoin := "LEFT JOIN scores sc ON sc.quiz_id = q.id"
	var args []interface{}
	if userID != 0 {
		scoreJoin += " AND sc.user_id = $1"
		args = append(args, userID)
	}
	q := `SELECT sub.id AS subject_id, sub.name AS subject_name, sc.total_scored, sc.total_questions
		FROM subjects sub
		LEFT JOIN chapters c ON c.subject_id = sub.id
		LEFT JOIN quizzes q ON q.chapter_id = c.id
		` + scoreJoin + `
		ORDER BY sub.id, sc.id`

	var rows []dbSubjectAttempt
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting subject attempts")
	}
	res := make([]stats.SubjectAttempt, 0, len(rows))
	for _, row := range rows {
		res = append(res, stats.SubjectAttempt{
			SubjectID:      row.SubjectID,
			SubjectName:    row.SubjectName,
			Attempted:      row.TotalScored.Valid,
			TotalScored:    row.TotalScored.Int,
			TotalQuestions: row.TotalQuestions.Int,
		})
	}
	return res, nil
}
