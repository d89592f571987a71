package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/user"
)

var ErrAlreadyRunning = errors.New("notifier is already running")

// Period describes one kind of digest.
type Period struct {
	Name          string
	Window        time.Duration
	Subject       string
	TemplateName  string
	WithAvailable bool // count the quizzes still open to the user
	WithBest      bool
}

var (
	Daily = Period{
		Name:          "daily",
		Window:        24 * time.Hour,
		Subject:       "Daily Quiz Reminder",
		TemplateName:  "daily_reminder",
		WithAvailable: true,
	}
	Monthly = Period{
		Name:         "monthly",
		Window:       30 * 24 * time.Hour,
		Subject:      "Monthly Activity Report",
		TemplateName: "monthly_activity_report",
		WithBest:     true,
	}
)

func PeriodByName(name string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Daily.Name:
		return Daily, nil
	case Monthly.Name:
		return Monthly, nil
	}
	return Period{}, errors.Errorf("unknown notification period %q", name)
}

type (
	Users interface {
		Learners(ctx context.Context) ([]user.User, error)
	}

	Attempts interface {
		ScoresBetween(ctx context.Context, userID int, from, to time.Time) ([]attempt.Score, error)
		CountAvailable(ctx context.Context, userID int) (int, error)
	}

	// Digest is the template data of a notification.
	Digest struct {
		UserID           int
		FullName         string
		AttemptCount     int
		AverageScore     float64
		BestScore        float64
		Performance      Performance
		AvailableQuizzes int
	}

	Report struct {
		Period  string
		Sent    int
		Skipped int
		Failed  int
		Lines   []string
	}

	Notifier struct {
		users    Users
		attempts Attempts
		mailer   core.EmailService
		conf     *core.Config
		log      core.Logger
		running  int32
		NowFunc  func() time.Time
	}
)

func (r Report) String() string {
	return fmt.Sprintf("%s: %d sent, %d skipped, %d failed", r.Period, r.Sent, r.Skipped, r.Failed)
}

func NewNotifier(users Users, attempts Attempts, mailer core.EmailService, conf *core.Config, logger core.Logger) *Notifier {
	return &Notifier{
		users:    users,
		attempts: attempts,
		mailer:   mailer,
		conf:     conf,
		log:      logger,
		NowFunc:  time.Now,
	}
}

// Run sends the digest of period `p` to every non-admin user.
// A failure for one user is logged and counted; it never stops the batch.
// Only one Run may be in flight at a time, others fail with ErrAlreadyRunning.
func (n *Notifier) Run(ctx context.Context, p Period) (Report, error) {
	if !atomic.CompareAndSwapInt32(&n.running, 0, 1) {
		return Report{}, ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&n.running, 0)

	report := Report{Period: p.Name}
	learners, err := n.users.Learners(ctx)
	if err != nil {
		return report, errors.Wrap(err, "listing users")
	}

	now := n.NowFunc().UTC()
	for _, usr := range learners {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		to, err := mail.ParseAddress(usr.Username)
		if err != nil {
			report.Skipped++
			n.log.Warn(fmt.Sprintf("notify(%s): skipping user %d: no mailing address", p.Name, usr.ID))
			continue
		}
		to.Name = usr.FullName

		dg, err := n.Digest(ctx, p, usr, now)
		if err == nil {
			err = n.send(ctx, p, *to, dg)
		}
		if err != nil {
			report.Failed++
			n.log.Error(fmt.Sprintf("notify(%s): user %d", p.Name, usr.ID), err)
			continue
		}
		report.Sent++
		report.Lines = append(report.Lines, dg.line(p))
	}
	return report, nil
}

// Digest computes the figures of `usr` over the window of `p` ending at `now`.
func (n *Notifier) Digest(ctx context.Context, p Period, usr user.User, now time.Time) (Digest, error) {
	scores, err := n.attempts.ScoresBetween(ctx, usr.ID, now.Add(-p.Window), now)
	if err != nil {
		return Digest{}, errors.Wrap(err, "querying scores")
	}

	dg := Digest{UserID: usr.ID, FullName: usr.FullName, AttemptCount: len(scores)}
	pcts := make([]float64, 0, len(scores))
	var best float64
	for _, sc := range scores {
		pct := core.RawPercentage(sc.TotalScored, sc.TotalQuestions)
		pcts = append(pcts, pct)
		if pct > best {
			best = pct
		}
	}
	dg.AverageScore = core.MeanPercentage(pcts)
	dg.Performance = Classify(dg.AverageScore)
	if p.WithBest {
		dg.BestScore = core.Round2(best)
	}
	if p.WithAvailable {
		if dg.AvailableQuizzes, err = n.attempts.CountAvailable(ctx, usr.ID); err != nil {
			return Digest{}, errors.Wrap(err, "counting available quizzes")
		}
	}
	return dg, nil
}

func (n *Notifier) send(ctx context.Context, p Period, to mail.Address, dg Digest) error {
	msg := &core.EmailMessage{
		To:              []mail.Address{to},
		Subject:         p.Subject,
		TemplateName:    p.TemplateName,
		TemplateData:    dg,
		FrontendBaseURL: n.conf.FrontendBaseURL,
	}
	return errors.Wrap(n.mailer.Send(ctx, msg), "sending email")
}

func (dg Digest) line(p Period) string {
	if p.WithBest {
		return fmt.Sprintf("Monthly report sent to %s - Total scores: %d, Avg: %.2f%%, Best: %.2f%%",
			dg.FullName, dg.AttemptCount, dg.AverageScore, dg.BestScore)
	}
	return fmt.Sprintf("Mail sent to %s - Recent scores: %d, Performance: %.2f%% (%s)",
		dg.FullName, dg.AttemptCount, dg.AverageScore, dg.Performance.Level)
}
