package inmemdb

import (
	"context"
	"sort"

	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/user"
)

type scoreRepository struct {
	db *DB
}

func NewScoreRepository(db *DB) attempt.Repository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) CreateScore(_ context.Context, sc attempt.Score) (attempt.Score, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.quizzes[sc.QuizID]; !ok {
		return attempt.Score{}, catalog.ErrQuizNotFound
	}
	if _, ok := repo.db.users[sc.UserID]; !ok {
		return attempt.Score{}, user.ErrNotFound
	}
	for _, other := range repo.db.scores {
		if other.QuizID == sc.QuizID && other.UserID == sc.UserID {
			return attempt.Score{}, attempt.ErrAlreadyAttempted
		}
	}
	sc.ID = repo.db.nextID()
	repo.db.scores[sc.ID] = sc
	return sc, nil
}

// sortedScores must be called with a lock held. Most recent first.
func (db *DB) sortedScores(keep func(sc attempt.Score) bool) []attempt.Score {
	scores := make([]attempt.Score, 0)
	for _, sc := range db.scores {
		if keep(sc) {
			scores = append(scores, sc)
		}
	}
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].Timestamp.Equal(scores[j].Timestamp) {
			return scores[i].Timestamp.After(scores[j].Timestamp)
		}
		return scores[i].ID > scores[j].ID
	})
	return scores
}

func (repo *scoreRepository) QueryScores(_ context.Context, filter attempt.ScoreFilter) ([]attempt.Score, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	scores := repo.db.sortedScores(func(sc attempt.Score) bool {
		switch {
		case filter.UserID != 0 && sc.UserID != filter.UserID,
			filter.QuizID != 0 && sc.QuizID != filter.QuizID,
			!filter.From.IsZero() && sc.Timestamp.Before(filter.From),
			!filter.To.IsZero() && sc.Timestamp.After(filter.To):
			return false
		}
		return true
	})
	if filter.Limit > 0 && len(scores) > filter.Limit {
		scores = scores[:filter.Limit]
	}
	return scores, nil
}
