package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/geeky-hamster/Quizme/core"
)

// Quiz statuses, set by admins.
const (
	StatusDraft   = "draft"
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Derived quiz states.
const (
	StateDraft    = "draft"
	StateUpcoming = "upcoming"
	StateActive   = "active"
	StateExpired  = "expired"
)

type (
	Subject struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	Chapter struct {
		ID          int    `json:"id"`
		SubjectID   int    `json:"subject_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	Quiz struct {
		ID           int       `json:"id"`
		ChapterID    int       `json:"chapter_id"`
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		StartDate    time.Time `json:"start_date"`    // UTC
		EndDate      time.Time `json:"end_date"`      // UTC
		TimeDuration int       `json:"time_duration"` // minutes
		Status       string    `json:"status"`
	}

	Question struct {
		ID            int    `json:"id"`
		QuizID        int    `json:"quiz_id"`
		Statement     string `json:"question_statement"`
		Option1       string `json:"option1"`
		Option2       string `json:"option2"`
		Option3       string `json:"option3"`
		Option4       string `json:"option4"`
		CorrectOption int    `json:"correct_option"`
	}

	// QuizPath is a quiz resolved through its owning chapter and subject.
	QuizPath struct {
		Quiz          Quiz
		Chapter       Chapter
		Subject       Subject
		QuestionCount int
	}

	QuizFilter struct {
		IDs       []int
		ChapterID int
		Status    string
	}
)

// IsActive reports whether q accepts attempts at `now`: status active and now within [start, end].
func (q Quiz) IsActive(now time.Time) bool {
	return q.Status == StatusActive && !now.Before(q.StartDate) && !now.After(q.EndDate)
}

func (q Quiz) IsExpired(now time.Time) bool {
	return now.After(q.EndDate)
}

func (q Quiz) IsUpcoming(now time.Time) bool {
	return now.Before(q.StartDate)
}

// State folds the status and the activity window into a single label.
func (q Quiz) State(now time.Time) string {
	switch {
	case q.IsExpired(now):
		return StateExpired
	case q.Status == StatusDraft:
		return StateDraft
	case q.IsUpcoming(now):
		return StateUpcoming
	case q.IsActive(now):
		return StateActive
	default:
		return StateExpired // status expired while inside the window
	}
}

// QuizView is a Quiz along with its state at a given instant.
type QuizView struct {
	Quiz
	IsActive   bool   `json:"is_active"`
	IsExpired  bool   `json:"is_expired"`
	IsUpcoming bool   `json:"is_upcoming"`
	State      string `json:"state"`
}

func (q Quiz) View(now time.Time) QuizView {
	return QuizView{
		Quiz:       q,
		IsActive:   q.IsActive(now),
		IsExpired:  q.IsExpired(now),
		IsUpcoming: q.IsUpcoming(now),
		State:      q.State(now),
	}
}

// QuestionView withholds the correct option from non-admin readers.
type QuestionView struct {
	ID            int    `json:"id"`
	QuizID        int    `json:"quiz_id"`
	Statement     string `json:"question_statement"`
	Option1       string `json:"option1"`
	Option2       string `json:"option2"`
	Option3       string `json:"option3"`
	Option4       string `json:"option4"`
	CorrectOption *int   `json:"correct_option"`
}

func (q Question) View(reveal bool) QuestionView {
	v := QuestionView{
		ID:        q.ID,
		QuizID:    q.QuizID,
		Statement: q.Statement,
		Option1:   q.Option1,
		Option2:   q.Option2,
		Option3:   q.Option3,
		Option4:   q.Option4,
	}
	if reveal {
		opt := q.CorrectOption
		v.CorrectOption = &opt
	}
	return v
}

// inputs

type SubjectInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

func (in *SubjectInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

type ChapterInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

func (in *ChapterInput) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	return validate.Struct(in)
}

type QuizInput struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  *string `json:"description"`
	StartDate    string  `json:"start_date" validate:"required,isotime"`
	EndDate      string  `json:"end_date" validate:"required,isotime"`
	TimeDuration int     `json:"time_duration" validate:"gt=0"`
	Status       string  `json:"status" validate:"omitempty,oneof=draft active expired"`

	startDate, endDate time.Time
}

func (in *QuizInput) Validate(validate *validator.Validate) error {
	in.Title = core.CleanString(in.Title)
	in.Status = core.CleanString(in.Status, true /* lower */)
	if err := validate.Struct(in); err != nil {
		return err
	}
	in.startDate, _ = core.ParseTimestamp(in.StartDate)
	in.endDate, _ = core.ParseTimestamp(in.EndDate)
	return nil
}

type QuestionInput struct {
	Statement     string `json:"question_statement" validate:"required"`
	Option1       string `json:"option1" validate:"required,max=200"`
	Option2       string `json:"option2" validate:"required,max=200"`
	Option3       string `json:"option3" validate:"required,max=200"`
	Option4       string `json:"option4" validate:"required,max=200"`
	CorrectOption int    `json:"correct_option" validate:"required,option"`
}

func (in *QuestionInput) Validate(validate *validator.Validate) error {
	in.Statement = core.CleanString(in.Statement)
	in.Option1 = core.CleanString(in.Option1)
	in.Option2 = core.CleanString(in.Option2)
	in.Option3 = core.CleanString(in.Option3)
	in.Option4 = core.CleanString(in.Option4)
	return validate.Struct(in)
}
