package catalog

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
)

var (
	// errors
	ErrSubjectNotFound  = core.NewNotFoundError("subject")
	ErrChapterNotFound  = core.NewNotFoundError("chapter")
	ErrQuizNotFound     = core.NewNotFoundError("quiz")
	ErrQuestionNotFound = core.NewNotFoundError("question")
	ErrSubjectExists    = errors.New("Subject already exists")

	subjectOrderings = []string{"id", "name"}
	chapterOrderings = []string{"id", "name"}
	quizOrderings    = []string{"id", "title", "start_date", "end_date", "status"}
)

type (
	// Repository persists the catalog hierarchy. Deleting an owner deletes everything it owns.
	Repository interface {
		// CreateSubject fails with ErrSubjectExists when the name is taken.
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubject(ctx context.Context, id int) (Subject, error)
		QuerySubjects(ctx context.Context, orderings ...core.DBOrdering) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error

		CreateChapter(ctx context.Context, chap Chapter) (Chapter, error)
		GetChapter(ctx context.Context, id int) (Chapter, error)
		QueryChapters(ctx context.Context, subjectID int, orderings ...core.DBOrdering) ([]Chapter, error)
		UpdateChapter(ctx context.Context, chap Chapter) (Chapter, error)
		DeleteChapter(ctx context.Context, id int) error

		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		GetQuiz(ctx context.Context, id int) (Quiz, error)
		QueryQuizzes(ctx context.Context, filter QuizFilter, orderings ...core.DBOrdering) ([]Quiz, error)
		// QueryQuizPaths resolves the quizzes matching filter through their chapter and subject.
		QueryQuizPaths(ctx context.Context, filter QuizFilter) ([]QuizPath, error)
		UpdateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		DeleteQuiz(ctx context.Context, id int) error

		CreateQuestion(ctx context.Context, qn Question) (Question, error)
		GetQuestion(ctx context.Context, id int) (Question, error)
		QueryQuestions(ctx context.Context, quizID int) ([]Question, error)
		UpdateQuestion(ctx context.Context, qn Question) (Question, error)
		DeleteQuestion(ctx context.Context, id int) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		NowFunc  func() time.Time
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, NowFunc: time.Now}
}

func (svc *Service) Now() time.Time {
	return svc.NowFunc().UTC()
}

func (svc *Service) subjectExists(err error) error {
	if errors.Cause(err) == ErrSubjectExists {
		return core.NewValidationError(ErrSubjectExists, core.FieldError{Field: "name", Error: ErrSubjectExists.Error()})
	}
	return err
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, in SubjectInput) (Subject, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	sub := Subject{Name: in.Name}
	if in.Description != nil {
		sub.Description = *in.Description
	}
	sub, err := svc.repo.CreateSubject(ctx, sub)
	return sub, svc.subjectExists(err)
}

func (svc *Service) GetSubject(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) QuerySubjects(ctx context.Context, orderings ...core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, core.FilterOrderings(orderings, subjectOrderings...)...)
}

// UpdateSubject replaces the name; the description is kept when omitted.
func (svc *Service) UpdateSubject(ctx context.Context, sub Subject, in SubjectInput) (Subject, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Subject{}, err
	}
	sub.Name = in.Name
	if in.Description != nil {
		sub.Description = *in.Description
	}
	sub, err := svc.repo.UpdateSubject(ctx, sub)
	return sub, svc.subjectExists(err)
}

// DeleteSubject deletes the subject along with its chapters, quizzes, questions and scores.
func (svc *Service) DeleteSubject(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}

// Chapters

func (svc *Service) CreateChapter(ctx context.Context, sub Subject, in ChapterInput) (Chapter, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Chapter{}, err
	}
	chap := Chapter{SubjectID: sub.ID, Name: in.Name}
	if in.Description != nil {
		chap.Description = *in.Description
	}
	return svc.repo.CreateChapter(ctx, chap)
}

func (svc *Service) GetChapter(ctx context.Context, id int) (Chapter, error) {
	return svc.repo.GetChapter(ctx, id)
}

func (svc *Service) QueryChapters(ctx context.Context, sub Subject, orderings ...core.DBOrdering) ([]Chapter, error) {
	return svc.repo.QueryChapters(ctx, sub.ID, core.FilterOrderings(orderings, chapterOrderings...)...)
}

func (svc *Service) UpdateChapter(ctx context.Context, chap Chapter, in ChapterInput) (Chapter, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Chapter{}, err
	}
	chap.Name = in.Name
	if in.Description != nil {
		chap.Description = *in.Description
	}
	return svc.repo.UpdateChapter(ctx, chap)
}

func (svc *Service) DeleteChapter(ctx context.Context, id int) error {
	return svc.repo.DeleteChapter(ctx, id)
}

// Quizzes

// CreateQuiz adds a quiz to chap. Quizzes are drafts unless a status is given.
func (svc *Service) CreateQuiz(ctx context.Context, chap Chapter, in QuizInput) (Quiz, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}
	qz := Quiz{ChapterID: chap.ID, Status: StatusDraft}
	in.apply(&qz)
	return svc.repo.CreateQuiz(ctx, qz)
}

func (svc *Service) GetQuiz(ctx context.Context, id int) (Quiz, error) {
	return svc.repo.GetQuiz(ctx, id)
}

func (svc *Service) QueryQuizzes(ctx context.Context, chap Chapter, orderings ...core.DBOrdering) ([]Quiz, error) {
	filter := QuizFilter{ChapterID: chap.ID}
	return svc.repo.QueryQuizzes(ctx, filter, core.FilterOrderings(orderings, quizOrderings...)...)
}

// UpdateQuiz replaces the quiz fields; status and description are kept when omitted.
func (svc *Service) UpdateQuiz(ctx context.Context, qz Quiz, in QuizInput) (Quiz, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Quiz{}, err
	}
	in.apply(&qz)
	return svc.repo.UpdateQuiz(ctx, qz)
}

func (in QuizInput) apply(qz *Quiz) {
	qz.Title = in.Title
	if in.Description != nil {
		qz.Description = *in.Description
	}
	qz.StartDate = in.startDate
	qz.EndDate = in.endDate
	qz.TimeDuration = in.TimeDuration
	if in.Status != "" {
		qz.Status = in.Status
	}
}

func (svc *Service) DeleteQuiz(ctx context.Context, id int) error {
	return svc.repo.DeleteQuiz(ctx, id)
}

// QuizPaths resolves quizzes through their chapter and subject, keyed by quiz id.
func (svc *Service) QuizPaths(ctx context.Context, filter QuizFilter) (map[int]QuizPath, error) {
	paths, err := svc.repo.QueryQuizPaths(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make(map[int]QuizPath, len(paths))
	for _, p := range paths {
		res[p.Quiz.ID] = p
	}
	return res, nil
}

// Questions

func (svc *Service) CreateQuestion(ctx context.Context, qz Quiz, in QuestionInput) (Question, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Question{}, err
	}
	qn := Question{QuizID: qz.ID}
	in.apply(&qn)
	return svc.repo.CreateQuestion(ctx, qn)
}

func (svc *Service) GetQuestion(ctx context.Context, id int) (Question, error) {
	return svc.repo.GetQuestion(ctx, id)
}

func (svc *Service) QueryQuestions(ctx context.Context, quizID int) ([]Question, error) {
	return svc.repo.QueryQuestions(ctx, quizID)
}

func (svc *Service) UpdateQuestion(ctx context.Context, qn Question, in QuestionInput) (Question, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Question{}, err
	}
	in.apply(&qn)
	return svc.repo.UpdateQuestion(ctx, qn)
}

func (in QuestionInput) apply(qn *Question) {
	qn.Statement = in.Statement
	qn.Option1 = in.Option1
	qn.Option2 = in.Option2
	qn.Option3 = in.Option3
	qn.Option4 = in.Option4
	qn.CorrectOption = in.CorrectOption
}

func (svc *Service) DeleteQuestion(ctx context.Context, id int) error {
	return svc.repo.DeleteQuestion(ctx, id)
}
