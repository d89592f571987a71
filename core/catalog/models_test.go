package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuiz_State(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	window := func(status string, start, end time.Duration) Quiz {
		return Quiz{Status: status, StartDate: now.Add(start), EndDate: now.Add(end)}
	}

	tests := []struct {
		name                      string
		quiz                      Quiz
		active, expired, upcoming bool
		state                     string
	}{
		{"active", window(StatusActive, -time.Hour, time.Hour), true, false, false, StateActive},
		{"starts now", window(StatusActive, 0, time.Hour), true, false, false, StateActive},
		{"ends now", window(StatusActive, -time.Hour, 0), true, false, false, StateActive},
		{"upcoming", window(StatusActive, time.Hour, 2*time.Hour), false, false, true, StateUpcoming},
		{"past window", window(StatusActive, -2*time.Hour, -time.Hour), false, true, false, StateExpired},
		{"draft in window", window(StatusDraft, -time.Hour, time.Hour), false, false, false, StateDraft},
		{"draft past window", window(StatusDraft, -2*time.Hour, -time.Hour), false, true, false, StateExpired},
		{"expired status in window", window(StatusExpired, -time.Hour, time.Hour), false, false, false, StateExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.quiz.IsActive(now), "IsActive")
			assert.Equal(t, tt.expired, tt.quiz.IsExpired(now), "IsExpired")
			assert.Equal(t, tt.upcoming, tt.quiz.IsUpcoming(now), "IsUpcoming")
			assert.Equal(t, tt.state, tt.quiz.State(now), "State")

			v := tt.quiz.View(now)
			assert.Equal(t, tt.quiz, v.Quiz)
			assert.Equal(t, tt.active, v.IsActive)
			assert.Equal(t, tt.state, v.State)
			if v.IsActive {
				assert.False(t, v.IsExpired || v.IsUpcoming, "active quizzes are neither expired nor upcoming")
			}
		})
	}
}

func TestQuestion_View(t *testing.T) {
	qn := Question{ID: 1, QuizID: 2, Statement: "2+2?", Option1: "3", Option2: "4", Option3: "5", Option4: "22", CorrectOption: 2}

	hidden := qn.View(false)
	assert.Nil(t, hidden.CorrectOption)
	assert.Equal(t, "4", hidden.Option2)

	shown := qn.View(true)
	if assert.NotNil(t, shown.CorrectOption) {
		assert.Equal(t, 2, *shown.CorrectOption)
	}
}
