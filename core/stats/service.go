package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
)

const (
	recentLimit = 5

	dashboardCacheKey  = "stats:dashboard"
	statisticsCacheKey = "stats:admin"
)

type (
	Repository interface {
		// Counts tallies every entity; active quizzes are evaluated at `now`.
		Counts(ctx context.Context, now time.Time) (Counts, error)
		// LatestSubject returns the subject with the highest id, nil when there is none.
		LatestSubject(ctx context.Context) (*Entry, error)
		LatestChapter(ctx context.Context) (*Entry, error)
		// RecentActivity returns the `limit` most recent scores, of user `userID` when non-zero.
		RecentActivity(ctx context.Context, userID, limit int) ([]Activity, error)
		// SubjectAttempts walks Subject -> Chapter -> Quiz -> Score, ordered by subject id.
		// Scores are those of user `userID` when non-zero.
		SubjectAttempts(ctx context.Context, userID int) ([]SubjectAttempt, error)
	}

	Service struct {
		repo     Repository
		cache    core.Cache
		cacheTTL time.Duration
		log      core.Logger
		NowFunc  func() time.Time
	}
)

func NewService(repo Repository, cache core.Cache, cacheTTL time.Duration, logger core.Logger) *Service {
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL, log: logger, NowFunc: time.Now}
}

func (svc *Service) now() time.Time {
	return svc.NowFunc().UTC()
}

// cached loads `key` into dst, or computes it with `fn` and stores it.
// Cache failures never fail the request.
func (svc *Service) cached(ctx context.Context, key string, dst interface{}, fn func() error) error {
	if svc.cache != nil {
		found, err := svc.cache.Get(ctx, key, dst)
		if err != nil {
			svc.log.Warn("stats: cache get "+key, err)
		} else if found {
			return nil
		}
	}
	if err := fn(); err != nil {
		return err
	}
	if svc.cache != nil {
		if err := svc.cache.Set(ctx, key, dst, svc.cacheTTL); err != nil {
			svc.log.Warn("stats: cache set "+key, err)
		}
	}
	return nil
}

// Invalidate drops the cached admin views.
func (svc *Service) Invalidate(ctx context.Context) error {
	if svc.cache == nil {
		return nil
	}
	return svc.cache.Delete(ctx, dashboardCacheKey, statisticsCacheKey)
}

func (svc *Service) DashboardStats(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	err := svc.cached(ctx, dashboardCacheKey, &dash, func() (err error) {
		dash, err = svc.dashboard(ctx)
		return err
	})
	return dash, err
}

func (svc *Service) dashboard(ctx context.Context) (Dashboard, error) {
	counts, err := svc.repo.Counts(ctx, svc.now())
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "counting")
	}
	latestSub, err := svc.repo.LatestSubject(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "latest subject")
	}
	latestChap, err := svc.repo.LatestChapter(ctx)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "latest chapter")
	}
	activities, err := svc.repo.RecentActivity(ctx, 0, recentLimit)
	if err != nil {
		return Dashboard{}, errors.Wrap(err, "recent activity")
	}

	lines := make([]ActivityLine, 0, len(activities))
	for _, act := range activities {
		lines = append(lines, ActivityLine{
			ID:        act.ScoreID,
			Icon:      activityIcon,
			Text:      fmt.Sprintf("%s completed quiz '%s' with score %d/%d", act.UserFullName, act.QuizTitle, act.TotalScored, act.TotalQuestions),
			Timestamp: act.Timestamp,
		})
	}
	return Dashboard{
		Stats: DashboardCounts{
			Subjects:      counts.Subjects,
			Chapters:      counts.Chapters,
			ActiveQuizzes: counts.ActiveQuizzes,
			Users:         counts.Users,
		},
		LatestSubject:  latestSub,
		LatestChapter:  latestChap,
		RecentActivity: lines,
	}, nil
}

func (svc *Service) AdminStatistics(ctx context.Context) (AdminStatistics, error) {
	var st AdminStatistics
	err := svc.cached(ctx, statisticsCacheKey, &st, func() (err error) {
		st, err = svc.adminStatistics(ctx)
		return err
	})
	return st, err
}

func (svc *Service) adminStatistics(ctx context.Context) (AdminStatistics, error) {
	counts, err := svc.repo.Counts(ctx, svc.now())
	if err != nil {
		return AdminStatistics{}, errors.Wrap(err, "counting")
	}
	attempts, err := svc.repo.SubjectAttempts(ctx, 0)
	if err != nil {
		return AdminStatistics{}, errors.Wrap(err, "subject attempts")
	}
	return AdminStatistics{
		Totals:             counts,
		ActiveQuizzes:      counts.ActiveQuizzes,
		CompletedQuizzes:   counts.CompletedQuizzes,
		SubjectPerformance: subjectPerformance(attempts, true),
	}, nil
}

// UserStatistics is never cached: users expect their last attempt to show up immediately.
func (svc *Service) UserStatistics(ctx context.Context, userID int) (UserStatistics, error) {
	attempts, err := svc.repo.SubjectAttempts(ctx, userID)
	if err != nil {
		return UserStatistics{}, errors.Wrap(err, "subject attempts")
	}
	activities, err := svc.repo.RecentActivity(ctx, userID, recentLimit)
	if err != nil {
		return UserStatistics{}, errors.Wrap(err, "recent activity")
	}

	var pcts []float64
	for _, att := range attempts {
		if att.Attempted {
			pcts = append(pcts, core.RawPercentage(att.TotalScored, att.TotalQuestions))
		}
	}
	trend := make([]TrendPoint, 0, len(activities))
	for _, act := range activities {
		trend = append(trend, TrendPoint{
			ScoreID:    act.ScoreID,
			QuizID:     act.QuizID,
			QuizTitle:  act.QuizTitle,
			Percentage: core.Percentage(act.TotalScored, act.TotalQuestions),
			Date:       act.Timestamp,
		})
	}
	return UserStatistics{
		TotalAttempts:      len(pcts),
		AverageScore:       core.MeanPercentage(pcts),
		SubjectPerformance: subjectPerformance(attempts, false),
		RecentTrend:        trend,
	}, nil
}

// subjectPerformance averages the per-attempt percentages of each subject (not pooled scored/total).
// Subjects without attempts are listed with a 0 average only when `withEmpty` is set.
func subjectPerformance(attempts []SubjectAttempt, withEmpty bool) []SubjectPerformance {
	var (
		res   = make([]SubjectPerformance, 0)
		index = make(map[int]int)
		pcts  = make(map[int][]float64)
	)
	for _, att := range attempts {
		if !att.Attempted && !withEmpty {
			continue
		}
		if _, ok := index[att.SubjectID]; !ok {
			index[att.SubjectID] = len(res)
			res = append(res, SubjectPerformance{SubjectID: att.SubjectID, Subject: att.SubjectName})
		}
		if att.Attempted {
			pcts[att.SubjectID] = append(pcts[att.SubjectID], core.RawPercentage(att.TotalScored, att.TotalQuestions))
		}
	}
	for i := range res {
		p := pcts[res[i].SubjectID]
		res[i].Attempts = len(p)
		res[i].AverageScore = core.MeanPercentage(p)
	}
	return res
}
