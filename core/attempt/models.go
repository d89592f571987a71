package attempt

import (
	"fmt"
	"time"

	"github.com/geeky-hamster/Quizme/core"
)

const attemptTimeLayout = "2006-01-02 15:04:05"

type (
	// Score records a user's single attempt at a quiz.
	Score struct {
		ID             int       `json:"id"`
		QuizID         int       `json:"quiz_id"`
		UserID         int       `json:"user_id"`
		Timestamp      time.Time `json:"time_stamp_of_attempt"` // UTC
		TotalScored    int       `json:"total_scored"`
		TotalQuestions int       `json:"total_questions"`
	}

	// ScoreFilter applies AND on its non-zero fields. Scores are returned most recent first.
	ScoreFilter struct {
		UserID int
		QuizID int
		From   time.Time // inclusive
		To     time.Time // inclusive
		Limit  int
	}

	// Submission holds the selected option per question id.
	Submission struct {
		Answers map[int]int `json:"answers"`
	}

	Result struct {
		Scored     int     `json:"scored"`
		Total      int     `json:"total"`
		Percentage float64 `json:"percentage"`
	}

	AvailableQuiz struct {
		ID             int       `json:"id"`
		Title          string    `json:"title"`
		Subject        string    `json:"subject"`
		Chapter        string    `json:"chapter"`
		StartDate      time.Time `json:"start_date"`
		EndDate        time.Time `json:"end_date"`
		TimeDuration   int       `json:"time_duration"`
		TotalQuestions int       `json:"total_questions"`
	}

	ScoreRow struct {
		ID          int     `json:"id"`
		QuizID      int     `json:"quiz_id"`
		Subject     string  `json:"subject"`
		Chapter     string  `json:"chapter"`
		QuizTitle   string  `json:"quiz_title"`
		Score       string  `json:"score"`
		Percentage  float64 `json:"percentage"`
		AttemptTime string  `json:"attempt_time"`
	}
)

// Percentage is scored/total*100 rounded to 2 decimals; 0 when the quiz had no questions.
func (s Score) Percentage() float64 {
	return core.Percentage(s.TotalScored, s.TotalQuestions)
}

// Fraction renders the score as "scored/total".
func (s Score) Fraction() string {
	return fmt.Sprintf("%d/%d", s.TotalScored, s.TotalQuestions)
}

func (s Score) Result() Result {
	return Result{Scored: s.TotalScored, Total: s.TotalQuestions, Percentage: s.Percentage()}
}
