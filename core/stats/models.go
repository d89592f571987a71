package stats

import "time"

const activityIcon = "fas fa-check-circle text-success"

type (
	// Counts are computed at a given instant, see Repository.Counts.
	Counts struct {
		Subjects         int `json:"subjects"`
		Chapters         int `json:"chapters"`
		Quizzes          int `json:"quizzes"`
		Questions        int `json:"questions"`
		Users            int `json:"users"` // non-admin
		Attempts         int `json:"attempts"`
		ActiveQuizzes    int `json:"-"`
		CompletedQuizzes int `json:"-"` // status expired
	}

	Entry struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	// Activity is a score resolved through its quiz and user.
	Activity struct {
		ScoreID        int
		QuizID         int
		QuizTitle      string
		UserID         int
		UserFullName   string
		Timestamp      time.Time
		TotalScored    int
		TotalQuestions int
	}

	// SubjectAttempt is one score of a subject, reached through chapter and quiz.
	// Subjects without any score appear once with Attempted false.
	SubjectAttempt struct {
		SubjectID      int
		SubjectName    string
		Attempted      bool
		TotalScored    int
		TotalQuestions int
	}

	DashboardCounts struct {
		Subjects      int `json:"subjects"`
		Chapters      int `json:"chapters"`
		ActiveQuizzes int `json:"activeQuizzes"`
		Users         int `json:"users"`
	}

	ActivityLine struct {
		ID        int       `json:"id"`
		Icon      string    `json:"icon"`
		Text      string    `json:"text"`
		Timestamp time.Time `json:"timestamp"`
	}

	Dashboard struct {
		Stats          DashboardCounts `json:"stats"`
		LatestSubject  *Entry          `json:"latestSubject"`
		LatestChapter  *Entry          `json:"latestChapter"`
		RecentActivity []ActivityLine  `json:"recentActivity"`
	}

	SubjectPerformance struct {
		SubjectID    int     `json:"subjectId"`
		Subject      string  `json:"subject"`
		Attempts     int     `json:"attempts"`
		AverageScore float64 `json:"averageScore"`
	}

	AdminStatistics struct {
		Totals             Counts               `json:"totals"`
		ActiveQuizzes      int                  `json:"activeQuizzes"`
		CompletedQuizzes   int                  `json:"completedQuizzes"`
		SubjectPerformance []SubjectPerformance `json:"subjectPerformance"`
	}

	TrendPoint struct {
		ScoreID    int       `json:"id"`
		QuizID     int       `json:"quizId"`
		QuizTitle  string    `json:"quizTitle"`
		Percentage float64   `json:"percentage"`
		Date       time.Time `json:"date"`
	}

	UserStatistics struct {
		TotalAttempts      int                  `json:"totalAttempts"`
		AverageScore       float64              `json:"averageScore"`
		SubjectPerformance []SubjectPerformance `json:"subjectPerformance"`
		RecentTrend        []TrendPoint         `json:"recentTrend"`
	}
)
