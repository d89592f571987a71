package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/stats"
	"github.com/geeky-hamster/Quizme/core/user"
)

type statsRepository struct {
	db *DB
}

func NewStatsRepository(db *DB) stats.Repository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) Counts(_ context.Context, now time.Time) (stats.Counts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c := stats.Counts{
		Subjects:  len(repo.db.subjects),
		Chapters:  len(repo.db.chapters),
		Quizzes:   len(repo.db.quizzes),
		Questions: len(repo.db.questions),
		Attempts:  len(repo.db.scores),
	}
	for _, usr := range repo.db.users {
		if usr.Role != user.RoleAdmin {
			c.Users++
		}
	}
	for _, qz := range repo.db.quizzes {
		if qz.IsActive(now) {
			c.ActiveQuizzes++
		}
		if qz.Status == catalog.StatusExpired {
			c.CompletedQuizzes++
		}
	}
	return c, nil
}

func (repo *statsRepository) LatestSubject(_ context.Context) (*stats.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var latest *stats.Entry
	for _, sub := range repo.db.subjects {
		if latest == nil || sub.ID > latest.ID {
			latest = &stats.Entry{ID: sub.ID, Name: sub.Name}
		}
	}
	return latest, nil
}

func (repo *statsRepository) LatestChapter(_ context.Context) (*stats.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var latest *stats.Entry
	for _, chap := range repo.db.chapters {
		if latest == nil || chap.ID > latest.ID {
			latest = &stats.Entry{ID: chap.ID, Name: chap.Name}
		}
	}
	return latest, nil
}

func (repo *statsRepository) RecentActivity(_ context.Context, userID, limit int) ([]stats.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	scores := repo.db.sortedScores(func(sc attempt.Score) bool {
		return userID == 0 || sc.UserID == userID
	})
	if limit > 0 && len(scores) > limit {
		scores = scores[:limit]
	}
	acts := make([]stats.Activity, 0, len(scores))
	for _, sc := range scores {
		acts = append(acts, stats.Activity{
			ScoreID:        sc.ID,
			QuizID:         sc.QuizID,
			QuizTitle:      repo.db.quizzes[sc.QuizID].Title,
			UserID:         sc.UserID,
			UserFullName:   repo.db.users[sc.UserID].FullName,
			Timestamp:      sc.Timestamp,
			TotalScored:    sc.TotalScored,
			TotalQuestions: sc.TotalQuestions,
		})
	}
	return acts, nil
}

func (repo *statsRepository) SubjectAttempts(_ context.Context, userID int) ([]stats.SubjectAttempt, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// score -> quiz -> chapter -> subject
	bySubject := make(map[int][]attempt.Score)
	for _, sc := range repo.db.scores {
		if userID != 0 && sc.UserID != userID {
			continue
		}
		chap := repo.db.chapters[repo.db.quizzes[sc.QuizID].ChapterID]
		bySubject[chap.SubjectID] = append(bySubject[chap.SubjectID], sc)
	}

	subIDs := make([]int, 0, len(repo.db.subjects))
	for id := range repo.db.subjects {
		subIDs = append(subIDs, id)
	}
	res := make([]stats.SubjectAttempt, 0)
	for _, id := range sortedIDs(subIDs) {
		sub := repo.db.subjects[id]
		scores := bySubject[id]
		if len(scores) == 0 {
			res = append(res, stats.SubjectAttempt{SubjectID: sub.ID, SubjectName: sub.Name})
			continue
		}
		sort.Slice(scores, func(i, j int) bool { return scores[i].ID < scores[j].ID })
		for _, sc := range scores {
			res = append(res, stats.SubjectAttempt{
				SubjectID:      sub.ID,
				SubjectName:    sub.Name,
				Attempted:      true,
				TotalScored:    sc.TotalScored,
				TotalQuestions: sc.TotalQuestions,
			})
		}
	}
	return res, nil
}
