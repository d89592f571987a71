package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/notify"
	"github.com/geeky-hamster/Quizme/core/user"
	emailsvc "github.com/geeky-hamster/Quizme/services/email"
	inmemdb "github.com/geeky-hamster/Quizme/storage/database/inmem"
	"github.com/geeky-hamster/Quizme/tests"
)

var now = time.Date(2024, time.March, 10, 10, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	tests := []struct {
		pct  float64
		want notify.Performance
	}{
		{100, notify.Excellent},
		{90, notify.Excellent},
		{89.99, notify.Good},
		{75, notify.Good},
		{74.99, notify.Fair},
		{60, notify.Fair},
		{59.99, notify.NeedsImprovement},
		{0, notify.NeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, notify.Classify(tt.pct), "Classify(%v)", tt.pct)
	}
}

func TestPeriodByName(t *testing.T) {
	p, err := notify.PeriodByName(" Daily ")
	require.NoError(t, err)
	assert.Equal(t, notify.Daily, p)

	p, err = notify.PeriodByName("monthly")
	require.NoError(t, err)
	assert.Equal(t, notify.Monthly, p)

	_, err = notify.PeriodByName("hourly")
	assert.EqualError(t, err, `unknown notification period "hourly"`)
}

// flakyMailer fails for the addresses in `fail` and records the others.
type flakyMailer struct {
	*emailsvc.ConsoleService
	fail map[string]bool
}

func (m flakyMailer) Send(ctx context.Context, msg *core.EmailMessage) error {
	if m.fail[msg.To[0].Address] {
		return errors.New("mailbox unavailable")
	}
	return m.ConsoleService.Send(ctx, msg)
}

type fixture struct {
	notifier *notify.Notifier
	mailer   flakyMailer
	usrRepo  user.Repository
	catRepo  catalog.Repository
	scores   attempt.Repository
	chap     catalog.Chapter
}

func setup(t *testing.T) fixture {
	t.Helper()
	conf := core.NewTestConfig()
	validate, _ := testutil.NewValidator()
	db := inmemdb.NewDB()

	f := fixture{
		mailer:  flakyMailer{ConsoleService: emailsvc.NewConsoleServiceMock(conf), fail: make(map[string]bool)},
		usrRepo: inmemdb.NewUserRepository(db),
		catRepo: inmemdb.NewCatalogRepository(db),
		scores:  inmemdb.NewScoreRepository(db),
	}
	attemptSvc := attempt.NewService(f.scores, catalog.NewService(f.catRepo, validate))
	attemptSvc.NowFunc = testutil.FixedClock(now)
	f.notifier = notify.NewNotifier(user.NewService(f.usrRepo, validate), attemptSvc, f.mailer, conf, testutil.NewLogger())
	f.notifier.NowFunc = testutil.FixedClock(now)
	f.chap = testutil.CreateChapter(t, f.catRepo, testutil.CreateSubject(t, f.catRepo, "Math"), "Algebra")
	return f
}

func (f fixture) attempt(t *testing.T, usr user.User, scored, total int, at time.Time) {
	t.Helper()
	qz := testutil.CreateQuiz(t, f.catRepo, f.chap, "Q", catalog.StatusExpired, at.Add(-time.Hour), at.Add(time.Hour))
	_, err := f.scores.CreateScore(context.Background(), attempt.Score{
		QuizID: qz.ID, UserID: usr.ID, Timestamp: at, TotalScored: scored, TotalQuestions: total,
	})
	require.NoError(t, err)
}

func TestNotifier_Digest(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, f.usrRepo, "john@test.com", "", "John", user.RoleUser)

	f.attempt(t, usr, 1, 1, now.Add(-time.Hour))       // 100
	f.attempt(t, usr, 1, 2, now.Add(-23*time.Hour))    // 50
	f.attempt(t, usr, 3, 4, now.Add(-25*time.Hour))    // 75, outside the daily window
	f.attempt(t, usr, 0, 4, now.Add(-31*24*time.Hour)) // outside both windows
	_ = testutil.CreateQuiz(t, f.catRepo, f.chap, "Open", catalog.StatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	dg, err := f.notifier.Digest(ctx, notify.Daily, usr, now)
	require.NoError(t, err)
	assert.Equal(t, notify.Digest{
		UserID:           usr.ID,
		FullName:         "John",
		AttemptCount:     2,
		AverageScore:     75,
		Performance:      notify.Good,
		AvailableQuizzes: 1,
	}, dg)

	dg, err = f.notifier.Digest(ctx, notify.Monthly, usr, now)
	require.NoError(t, err)
	assert.Equal(t, notify.Digest{
		UserID:       usr.ID,
		FullName:     "John",
		AttemptCount: 3,
		AverageScore: 75,
		BestScore:    100,
		Performance:  notify.Good,
	}, dg)

	other := testutil.CreateUser(t, f.usrRepo, "jane@test.com", "", "Jane", user.RoleUser)
	dg, err = f.notifier.Digest(ctx, notify.Daily, other, now)
	require.NoError(t, err)
	assert.Equal(t, 0, dg.AttemptCount)
	assert.Equal(t, 0.0, dg.AverageScore)
	assert.Equal(t, notify.NeedsImprovement, dg.Performance)
}

func TestNotifier_Run(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_ = testutil.CreateUser(t, f.usrRepo, "admin@test.com", "", "Admin", user.RoleAdmin)
	john := testutil.CreateUser(t, f.usrRepo, "john@test.com", "", "John", user.RoleUser)
	_ = testutil.CreateUser(t, f.usrRepo, "broken@test.com", "", "Broken", user.RoleUser)
	_ = testutil.CreateUser(t, f.usrRepo, "jane@test.com", "", "Jane", user.RoleUser)
	_ = testutil.CreateUser(t, f.usrRepo, "no-address", "", "Nobody", user.RoleUser)
	f.mailer.fail["broken@test.com"] = true
	f.attempt(t, john, 9, 10, now.Add(-time.Hour))

	report, err := f.notifier.Run(ctx, notify.Daily)
	require.NoError(t, err)
	assert.Equal(t, "daily", report.Period)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Lines, "Mail sent to John - Recent scores: 1, Performance: 90.00% (Excellent)")
	assert.Equal(t, "daily: 2 sent, 1 skipped, 1 failed", report.String())

	sent := f.mailer.SentMessages()
	require.Len(t, sent, 2)
	var to []string
	for _, msg := range sent {
		assert.Equal(t, "Daily Quiz Reminder", msg.Subject)
		assert.Contains(t, msg.TextContent, "Hello ")
		to = append(to, msg.To[0].String())
	}
	assert.ElementsMatch(t, []string{`"John" <john@test.com>`, `"Jane" <jane@test.com>`}, to)
}

func TestNotifier_Run_monthly(t *testing.T) {
	f := setup(t)
	john := testutil.CreateUser(t, f.usrRepo, "john@test.com", "", "John", user.RoleUser)
	f.attempt(t, john, 1, 4, now.Add(-10*24*time.Hour))
	f.attempt(t, john, 3, 4, now.Add(-20*24*time.Hour))

	report, err := f.notifier.Run(context.Background(), notify.Monthly)
	require.NoError(t, err)
	assert.Equal(t, []string{"Monthly report sent to John - Total scores: 2, Avg: 50.00%, Best: 75.00%"}, report.Lines)

	sent := f.mailer.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Monthly Activity Report", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "Best score: 75.00%")
}

// blockingUsers holds Learners until released.
type blockingUsers struct {
	entered chan struct{}
	release chan struct{}
}

func (b blockingUsers) Learners(context.Context) ([]user.User, error) {
	close(b.entered)
	<-b.release
	return nil, nil
}

func TestNotifier_Run_singleFlight(t *testing.T) {
	users := blockingUsers{entered: make(chan struct{}), release: make(chan struct{})}
	n := notify.NewNotifier(users, nil, nil, core.NewTestConfig(), testutil.NewLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := n.Run(context.Background(), notify.Daily)
		assert.NoError(t, err)
	}()

	<-users.entered
	_, err := n.Run(context.Background(), notify.Monthly)
	assert.Equal(t, notify.ErrAlreadyRunning, err)

	close(users.release)
	wg.Wait()
}
