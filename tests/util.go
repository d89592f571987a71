package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/user"
	logsvc "github.com/geeky-hamster/Quizme/services/logger"
)

// NewValidator returns a validator with every app validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	catalog.InitValidators(validate, translator)
	return validate, translator
}

// NewLogger returns a core.Logger that reports nowhere.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
}

// FixedClock returns a NowFunc that always reports `t`.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd, fullName, role string) user.User {
	t.Helper()
	usr := user.User{
		Username:      uname,
		FullName:      fullName,
		Qualification: "BSc",
		DOB:           time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:          role,
		CreatedAt:     time.Now().UTC(),
	}
	if pwd != "" {
		require.NoError(t, usr.SetPassword(pwd), "SetPassword()")
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err, "CreateUser()")
	return usr
}

func CreateSubject(t *testing.T, repo catalog.Repository, name string) catalog.Subject {
	t.Helper()
	sub, err := repo.CreateSubject(context.Background(), catalog.Subject{Name: name})
	require.NoError(t, err, "CreateSubject()")
	return sub
}

func CreateChapter(t *testing.T, repo catalog.Repository, sub catalog.Subject, name string) catalog.Chapter {
	t.Helper()
	chap, err := repo.CreateChapter(context.Background(), catalog.Chapter{SubjectID: sub.ID, Name: name})
	require.NoError(t, err, "CreateChapter()")
	return chap
}

// CreateQuiz creates a quiz open over [start, end].
func CreateQuiz(t *testing.T, repo catalog.Repository, chap catalog.Chapter, title, status string, start, end time.Time) catalog.Quiz {
	t.Helper()
	qz, err := repo.CreateQuiz(context.Background(), catalog.Quiz{
		ChapterID:    chap.ID,
		Title:        title,
		StartDate:    start.UTC(),
		EndDate:      end.UTC(),
		TimeDuration: 30,
		Status:       status,
	})
	require.NoError(t, err, "CreateQuiz()")
	return qz
}

func CreateQuestion(t *testing.T, repo catalog.Repository, qz catalog.Quiz, statement string, correct int) catalog.Question {
	t.Helper()
	qn, err := repo.CreateQuestion(context.Background(), catalog.Question{
		QuizID:        qz.ID,
		Statement:     statement,
		Option1:       "a",
		Option2:       "b",
		Option3:       "c",
		Option4:       "d",
		CorrectOption: correct,
	})
	require.NoError(t, err, "CreateQuestion()")
	return qn
}
