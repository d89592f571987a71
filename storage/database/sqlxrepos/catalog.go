package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/storage/database"
)

const (
	subjectColumns  = "id, name, description"
	chapterColumns  = "id, subject_id, name, description"
	quizColumns     = "id, chapter_id, title, description, start_date, end_date, time_duration, status"
	questionColumns = "id, quiz_id, question_statement, option1, option2, option3, option4, correct_option"

	subjectNameKey = "subjects_name_key"
)

type (
	dbSubject struct {
		ID          int    `db:"id"`
		Name        string `db:"name"`
		Description string `db:"description"`
	}

	dbChapter struct {
		ID          int    `db:"id"`
		SubjectID   int    `db:"subject_id"`
		Name        string `db:"name"`
		Description string `db:"description"`
	}

	dbQuiz struct {
		ID           int       `db:"id"`
		ChapterID    int       `db:"chapter_id"`
		Title        string    `db:"title"`
		Description  string    `db:"description"`
		StartDate    time.Time `db:"start_date"`
		EndDate      time.Time `db:"end_date"`
		TimeDuration int       `db:"time_duration"`
		Status       string    `db:"status"`
	}

	dbQuizPath struct {
		dbQuiz
		ChapterName        string `db:"chapter_name"`
		ChapterDescription string `db:"chapter_description"`
		SubjectID          int    `db:"subject_id"`
		SubjectName        string `db:"subject_name"`
		SubjectDescription string `db:"subject_description"`
		QuestionCount      int    `db:"question_count"`
	}

	dbQuestion struct {
		ID            int    `db:"id"`
		QuizID        int    `db:"quiz_id"`
		Statement     string `db:"question_statement"`
		Option1       string `db:"option1"`
		Option2       string `db:"option2"`
		Option3       string `db:"option3"`
		Option4       string `db:"option4"`
		CorrectOption int    `db:"correct_option"`
	}
)

func (s dbSubject) toSubject() catalog.Subject {
	return catalog.Subject{ID: s.ID, Name: s.Name, Description: s.Description}
}

func (c dbChapter) toChapter() catalog.Chapter {
	return catalog.Chapter{ID: c.ID, SubjectID: c.SubjectID, Name: c.Name, Description: c.Description}
}

func (q dbQuiz) toQuiz() catalog.Quiz {
	return catalog.Quiz{
		ID:           q.ID,
		ChapterID:    q.ChapterID,
		Title:        q.Title,
		Description:  q.Description,
		StartDate:    q.StartDate.UTC(),
		EndDate:      q.EndDate.UTC(),
		TimeDuration: q.TimeDuration,
		Status:       q.Status,
	}
}

func (p dbQuizPath) toQuizPath() catalog.QuizPath {
	return catalog.QuizPath{
		Quiz:          p.toQuiz(),
		Chapter:       catalog.Chapter{ID: p.ChapterID, SubjectID: p.SubjectID, Name: p.ChapterName, Description: p.ChapterDescription},
		Subject:       catalog.Subject{ID: p.SubjectID, Name: p.SubjectName, Description: p.SubjectDescription},
		QuestionCount: p.QuestionCount,
	}
}

func (q dbQuestion) toQuestion() catalog.Question {
	return catalog.Question{
		ID:            q.ID,
		QuizID:        q.QuizID,
		Statement:     q.Statement,
		Option1:       q.Option1,
		Option2:       q.Option2,
		Option3:       q.Option3,
		Option4:       q.Option4,
		CorrectOption: q.CorrectOption,
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// Subjects

func (repo *catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	err := repo.db.GetContext(ctx, &sub.ID,
		"INSERT INTO subjects (name, description) VALUES ($1, $2) RETURNING id", sub.Name, sub.Description)
	if err != nil {
		if database.IsUniqueViolation(err, subjectNameKey) {
			return catalog.Subject{}, catalog.ErrSubjectExists
		}
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *catalogRepository) GetSubject(ctx context.Context, id int) (catalog.Subject, error) {
	var row dbSubject
	if err := get(ctx, repo.db, &row, catalog.ErrSubjectNotFound, "SELECT "+subjectColumns+" FROM subjects WHERE id = $1", id); err != nil {
		return catalog.Subject{}, err
	}
	return row.toSubject(), nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context, orderings ...core.DBOrdering) ([]catalog.Subject, error) {
	var rows []dbSubject
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+subjectColumns+" FROM subjects"+orderBy(orderings, "id")); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subs := make([]catalog.Subject, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubject())
	}
	return subs, nil
}

func (repo *catalogRepository) UpdateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE subjects SET name = $2, description = $3 WHERE id = $1", sub.ID, sub.Name, sub.Description)
	if database.IsUniqueViolation(err, subjectNameKey) {
		return catalog.Subject{}, catalog.ErrSubjectExists
	}
	if err = checkAffected(res, err, catalog.ErrSubjectNotFound); err != nil {
		return catalog.Subject{}, err
	}
	return sub, nil
}

func (repo *catalogRepository) DeleteSubject(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	return checkAffected(res, err, catalog.ErrSubjectNotFound)
}

// Chapters

func (repo *catalogRepository) CreateChapter(ctx context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	err := repo.db.GetContext(ctx, &chap.ID,
		"INSERT INTO chapters (subject_id, name, description) VALUES ($1, $2, $3) RETURNING id",
		chap.SubjectID, chap.Name, chap.Description)
	if err != nil {
		return catalog.Chapter{}, errors.Wrap(err, "inserting chapter")
	}
	return chap, nil
}

func (repo *catalogRepository) GetChapter(ctx context.Context, id int) (catalog.Chapter, error) {
	var row dbChapter
	if err := get(ctx, repo.db, &row, catalog.ErrChapterNotFound, "SELECT "+chapterColumns+" FROM chapters WHERE id = $1", id); err != nil {
		return catalog.Chapter{}, err
	}
	return row.toChapter(), nil
}

func (repo *catalogRepository) QueryChapters(ctx context.Context, subjectID int, orderings ...core.DBOrdering) ([]catalog.Chapter, error) {
	var rows []dbChapter
	q := "SELECT " + chapterColumns + " FROM chapters WHERE subject_id = $1" + orderBy(orderings, "id")
	if err := repo.db.SelectContext(ctx, &rows, q, subjectID); err != nil {
		return nil, errors.Wrap(err, "selecting chapters")
	}
	chaps := make([]catalog.Chapter, 0, len(rows))
	for _, row := range rows {
		chaps = append(chaps, row.toChapter())
	}
	return chaps, nil
}

func (repo *catalogRepository) UpdateChapter(ctx context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	res, err := repo.db.ExecContext(ctx,
		"UPDATE chapters SET name = $2, description = $3 WHERE id = $1", chap.ID, chap.Name, chap.Description)
	if err = checkAffected(res, err, catalog.ErrChapterNotFound); err != nil {
		return catalog.Chapter{}, err
	}
	return chap, nil
}

func (repo *catalogRepository) DeleteChapter(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM chapters WHERE id = $1", id)
	return checkAffected(res, err, catalog.ErrChapterNotFound)
}

// Quizzes

func (repo *catalogRepository) CreateQuiz(ctx context.Context, qz catalog.Quiz) (catalog.Quiz, error) {
	const q = `INSERT INTO quizzes (chapter_id, title, description, start_date, end_date, time_duration, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := repo.db.GetContext(ctx, &qz.ID, q,
		qz.ChapterID, qz.Title, qz.Description, qz.StartDate, qz.EndDate, qz.TimeDuration, qz.Status)
	if err != nil {
		return catalog.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

func (repo *catalogRepository) GetQuiz(ctx context.Context, id int) (catalog.Quiz, error) {
	var row dbQuiz
	if err := get(ctx, repo.db, &row, catalog.ErrQuizNotFound, "SELECT "+quizColumns+" FROM quizzes WHERE id = $1", id); err != nil {
		return catalog.Quiz{}, err
	}
	return row.toQuiz(), nil
}

func quizConditions(filter catalog.QuizFilter, alias string) conditions {
	var cond conditions
	if len(filter.IDs) > 0 {
		cond.add(alias+"id = ANY(?)", pq.Array(filter.IDs))
	}
	if filter.ChapterID != 0 {
		cond.add(alias+"chapter_id = ?", filter.ChapterID)
	}
	if filter.Status != "" {
		cond.add(alias+"status = ?", filter.Status)
	}
	return cond
}

func (repo *catalogRepository) QueryQuizzes(ctx context.Context, filter catalog.QuizFilter, orderings ...core.DBOrdering) ([]catalog.Quiz, error) {
	cond := quizConditions(filter, "")
	var rows []dbQuiz
	q := "SELECT " + quizColumns + " FROM quizzes" + cond.where() + orderBy(orderings, "id")
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "selecting quizzes")
	}
	quizzes := make([]catalog.Quiz, 0, len(rows))
	for _, row := range rows {
		quizzes = append(quizzes, row.toQuiz())
	}
	return quizzes, nil
}

func (repo *catalogRepository) QueryQuizPaths(ctx context.Context, filter catalog.QuizFilter) ([]catalog.QuizPath, error) {
	cond := quizConditions(filter, "q.")
	q := `SELECT q.id, q.chapter_id, q.title, q.description, q.start_date, q.end_date, q.time_duration, q.status,
			c.name AS chapter_name, c.description AS chapter_description,
			s.id AS subject_id, s.name AS subject_name, s.description AS subject_description,
			(SELECT COUNT(*) FROM questions qn WHERE qn.quiz_id = q.id) AS question_count
		FROM quizzes q
		JOIN chapters c ON c.id = q.chapter_id
		JOIN subjects s ON s.id = c.subject_id` + cond.where() + " ORDER BY q.id"

	var rows []dbQuizPath
	if err := repo.db.SelectContext(ctx, &rows, q, cond.args...); err != nil {
		return nil, errors.Wrap(err, "selecting quiz paths")
	}
	paths := make([]catalog.QuizPath, 0, len(rows))
	for _, row := range rows {
		paths = append(paths, row.toQuizPath())
	}
	return paths, nil
}

func (repo *catalogRepository) UpdateQuiz(ctx context.Context, qz catalog.Quiz) (catalog.Quiz, error) {
	const q = `UPDATE quizzes SET title = $2, description = $3, start_date = $4, end_date = $5, time_duration = $6,
		status = $7 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		qz.ID, qz.Title, qz.Description, qz.StartDate, qz.EndDate, qz.TimeDuration, qz.Status)
	if err = checkAffected(res, err, catalog.ErrQuizNotFound); err != nil {
		return catalog.Quiz{}, err
	}
	return qz, nil
}

func (repo *catalogRepository) DeleteQuiz(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM quizzes WHERE id = $1", id)
	return checkAffected(res, err, catalog.ErrQuizNotFound)
}

// Questions

func (repo *catalogRepository) CreateQuestion(ctx context.Context, qn catalog.Question) (catalog.Question, error) {
	const q = `INSERT INTO questions (quiz_id, question_statement, option1, option2, option3, option4, correct_option)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := repo.db.GetContext(ctx, &qn.ID, q,
		qn.QuizID, qn.Statement, qn.Option1, qn.Option2, qn.Option3, qn.Option4, qn.CorrectOption)
	if err != nil {
		return catalog.Question{}, errors.Wrap(err, "inserting question")
	}
	return qn, nil
}

func (repo *catalogRepository) GetQuestion(ctx context.Context, id int) (catalog.Question, error) {
	var row dbQuestion
	if err := get(ctx, repo.db, &row, catalog.ErrQuestionNotFound, "SELECT "+questionColumns+" FROM questions WHERE id = $1", id); err != nil {
		return catalog.Question{}, err
	}
	return row.toQuestion(), nil
}

func (repo *catalogRepository) QueryQuestions(ctx context.Context, quizID int) ([]catalog.Question, error) {
	var rows []dbQuestion
	q := "SELECT " + questionColumns + " FROM questions WHERE quiz_id = $1 ORDER BY id"
	if err := repo.db.SelectContext(ctx, &rows, q, quizID); err != nil {
		return nil, errors.Wrap(err, "selecting questions")
	}
	questions := make([]catalog.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toQuestion())
	}
	return questions, nil
}

func (repo *catalogRepository) UpdateQuestion(ctx context.Context, qn catalog.Question) (catalog.Question, error) {
	const q = `UPDATE questions SET question_statement = $2, option1 = $3, option2 = $4, option3 = $5, option4 = $6,
		correct_option = $7 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		qn.ID, qn.Statement, qn.Option1, qn.Option2, qn.Option3, qn.Option4, qn.CorrectOption)
	if err = checkAffected(res, err, catalog.ErrQuestionNotFound); err != nil {
		return catalog.Question{}, err
	}
	return qn, nil
}

func (repo *catalogRepository) DeleteQuestion(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM questions WHERE id = $1", id)
	return checkAffected(res, err, catalog.ErrQuestionNotFound)
}
