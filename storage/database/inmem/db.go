// Package inmemdb keeps every table in memory. It enforces the same uniqueness and cascade rules as the SQL schema.
package inmemdb

import (
	"sort"
	"sync"

	"github.com/geeky-hamster/Quizme/core/attempt"
	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/user"
)

type DB struct {
	mutex sync.RWMutex
	seq   int

	users     map[int]user.User
	subjects  map[int]catalog.Subject
	chapters  map[int]catalog.Chapter
	quizzes   map[int]catalog.Quiz
	questions map[int]catalog.Question
	scores    map[int]attempt.Score
}

func NewDB() *DB {
	db := &DB{}
	db.reset()
	return db
}

func (db *DB) reset() {
	db.users = make(map[int]user.User)
	db.subjects = make(map[int]catalog.Subject)
	db.chapters = make(map[int]catalog.Chapter)
	db.quizzes = make(map[int]catalog.Quiz)
	db.questions = make(map[int]catalog.Question)
	db.scores = make(map[int]attempt.Score)
}

// Flush empties every table. Ids keep increasing.
func (db *DB) Flush() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int {
	db.seq++
	return db.seq
}

// cascade deletes must be called with the write lock held.

func (db *DB) deleteSubject(id int) {
	delete(db.subjects, id)
	for chapID, chap := range db.chapters {
		if chap.SubjectID == id {
			db.deleteChapter(chapID)
		}
	}
}

func (db *DB) deleteChapter(id int) {
	delete(db.chapters, id)
	for qzID, qz := range db.quizzes {
		if qz.ChapterID == id {
			db.deleteQuiz(qzID)
		}
	}
}

func (db *DB) deleteQuiz(id int) {
	delete(db.quizzes, id)
	for qnID, qn := range db.questions {
		if qn.QuizID == id {
			delete(db.questions, qnID)
		}
	}
	for scID, sc := range db.scores {
		if sc.QuizID == id {
			delete(db.scores, scID)
		}
	}
}

func sortedIDs(ids []int) []int {
	sort.Ints(ids)
	return ids
}
