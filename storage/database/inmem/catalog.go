package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/catalog"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// compareFunc returns <0, 0 or >0 when the i-th element is less, equal or greater than the j-th one on `field`.
type compareFunc func(field string, i, j int) int

// sortBy sorts n elements on `orderings`, then on their id (`field` "id").
func sortBy(n int, swap func(i, j int), cmp compareFunc, orderings []core.DBOrdering) {
	orderings = append(orderings, core.DBOrdering{Field: "id", Ascending: true})
	sort.Sort(sorter{n: n, swap: swap, less: func(i, j int) bool {
		for _, ord := range orderings {
			c := cmp(ord.Field, i, j)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}})
}

type sorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }

func compareInts(a, b int) int {
	return a - b
}

// Subjects

func (repo *catalogRepository) CreateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.subjectNameTaken(sub.Name, 0) {
		return catalog.Subject{}, catalog.ErrSubjectExists
	}
	sub.ID = repo.db.nextID()
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *catalogRepository) subjectNameTaken(name string, exclID int) bool {
	for _, sub := range repo.db.subjects {
		if sub.Name == name && sub.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *catalogRepository) GetSubject(_ context.Context, id int) (catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return sub, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) QuerySubjects(_ context.Context, orderings ...core.DBOrdering) ([]catalog.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subs := make([]catalog.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subs = append(subs, sub)
	}
	sortBy(len(subs), func(i, j int) { subs[i], subs[j] = subs[j], subs[i] }, func(field string, i, j int) int {
		if field == "name" {
			return strings.Compare(subs[i].Name, subs[j].Name)
		}
		return compareInts(subs[i].ID, subs[j].ID)
	}, orderings)
	return subs, nil
}

func (repo *catalogRepository) UpdateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}
	if repo.subjectNameTaken(sub.Name, sub.ID) {
		return catalog.Subject{}, catalog.ErrSubjectExists
	}
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo *catalogRepository) DeleteSubject(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return catalog.ErrSubjectNotFound
	}
	repo.db.deleteSubject(id)
	return nil
}

// Chapters

func (repo *catalogRepository) CreateChapter(_ context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[chap.SubjectID]; !ok {
		return catalog.Chapter{}, catalog.ErrSubjectNotFound
	}
	chap.ID = repo.db.nextID()
	repo.db.chapters[chap.ID] = chap
	return chap, nil
}

func (repo *catalogRepository) GetChapter(_ context.Context, id int) (catalog.Chapter, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if chap, ok := repo.db.chapters[id]; ok {
		return chap, nil
	}
	return catalog.Chapter{}, catalog.ErrChapterNotFound
}

func (repo *catalogRepository) QueryChapters(_ context.Context, subjectID int, orderings ...core.DBOrdering) ([]catalog.Chapter, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	chaps := make([]catalog.Chapter, 0)
	for _, chap := range repo.db.chapters {
		if chap.SubjectID == subjectID {
			chaps = append(chaps, chap)
		}
	}
	sortBy(len(chaps), func(i, j int) { chaps[i], chaps[j] = chaps[j], chaps[i] }, func(field string, i, j int) int {
		if field == "name" {
			return strings.Compare(chaps[i].Name, chaps[j].Name)
		}
		return compareInts(chaps[i].ID, chaps[j].ID)
	}, orderings)
	return chaps, nil
}

func (repo *catalogRepository) UpdateChapter(_ context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.chapters[chap.ID]; !ok {
		return catalog.Chapter{}, catalog.ErrChapterNotFound
	}
	repo.db.chapters[chap.ID] = chap
	return chap, nil
}

func (repo *catalogRepository) DeleteChapter(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.chapters[id]; !ok {
		return catalog.ErrChapterNotFound
	}
	repo.db.deleteChapter(id)
	return nil
}

// Quizzes

func (repo *catalogRepository) CreateQuiz(_ context.Context, qz catalog.Quiz) (catalog.Quiz, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.chapters[qz.ChapterID]; !ok {
		return catalog.Quiz{}, catalog.ErrChapterNotFound
	}
	qz.ID = repo.db.nextID()
	repo.db.quizzes[qz.ID] = qz
	return qz, nil
}

func (repo *catalogRepository) GetQuiz(_ context.Context, id int) (catalog.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return qz, nil
	}
	return catalog.Quiz{}, catalog.ErrQuizNotFound
}

// filterQuizzes must be called with a lock held.
func (repo *catalogRepository) filterQuizzes(filter catalog.QuizFilter) []catalog.Quiz {
	var ids map[int]bool
	if len(filter.IDs) > 0 {
		ids = make(map[int]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = true
		}
	}

	quizzes := make([]catalog.Quiz, 0)
	for _, qz := range repo.db.quizzes {
		if ids != nil && !ids[qz.ID] {
			continue
		}
		if filter.ChapterID != 0 && qz.ChapterID != filter.ChapterID {
			continue
		}
		if filter.Status != "" && qz.Status != filter.Status {
			continue
		}
		quizzes = append(quizzes, qz)
	}
	return quizzes
}

func (repo *catalogRepository) QueryQuizzes(_ context.Context, filter catalog.QuizFilter, orderings ...core.DBOrdering) ([]catalog.Quiz, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	quizzes := repo.filterQuizzes(filter)
	sortBy(len(quizzes), func(i, j int) { quizzes[i], quizzes[j] = quizzes[j], quizzes[i] }, func(field string, i, j int) int {
		a, b := quizzes[i], quizzes[j]
		switch field {
		case "title":
			return strings.Compare(a.Title, b.Title)
		case "status":
			return strings.Compare(a.Status, b.Status)
		case "start_date":
			return a.StartDate.Compare(b.StartDate)
		case "end_date":
			return a.EndDate.Compare(b.EndDate)
		}
		return compareInts(a.ID, b.ID)
	}, orderings)
	return quizzes, nil
}

func (repo *catalogRepository) QueryQuizPaths(_ context.Context, filter catalog.QuizFilter) ([]catalog.QuizPath, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	quizzes := repo.filterQuizzes(filter)
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })

	counts := make(map[int]int)
	for _, qn := range repo.db.questions {
		counts[qn.QuizID]++
	}
	paths := make([]catalog.QuizPath, 0, len(quizzes))
	for _, qz := range quizzes {
		chap := repo.db.chapters[qz.ChapterID]
		paths = append(paths, catalog.QuizPath{
			Quiz:          qz,
			Chapter:       chap,
			Subject:       repo.db.subjects[chap.SubjectID],
			QuestionCount: counts[qz.ID],
		})
	}
	return paths, nil
}

func (repo *catalogRepository) UpdateQuiz(_ context.Context, qz catalog.Quiz) (catalog.Quiz, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.quizzes[qz.ID]; !ok {
		return catalog.Quiz{}, catalog.ErrQuizNotFound
	}
	repo.db.quizzes[qz.ID] = qz
	return qz, nil
}

func (repo *catalogRepository) DeleteQuiz(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.quizzes[id]; !ok {
		return catalog.ErrQuizNotFound
	}
	repo.db.deleteQuiz(id)
	return nil
}

// Questions

func (repo *catalogRepository) CreateQuestion(_ context.Context, qn catalog.Question) (catalog.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.quizzes[qn.QuizID]; !ok {
		return catalog.Question{}, catalog.ErrQuizNotFound
	}
	qn.ID = repo.db.nextID()
	repo.db.questions[qn.ID] = qn
	return qn, nil
}

func (repo *catalogRepository) GetQuestion(_ context.Context, id int) (catalog.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if qn, ok := repo.db.questions[id]; ok {
		return qn, nil
	}
	return catalog.Question{}, catalog.ErrQuestionNotFound
}

func (repo *catalogRepository) QueryQuestions(_ context.Context, quizID int) ([]catalog.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	questions := make([]catalog.Question, 0)
	for _, qn := range repo.db.questions {
		if qn.QuizID == quizID {
			questions = append(questions, qn)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, nil
}

func (repo *catalogRepository) UpdateQuestion(_ context.Context, qn catalog.Question) (catalog.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[qn.ID]; !ok {
		return catalog.Question{}, catalog.ErrQuestionNotFound
	}
	repo.db.questions[qn.ID] = qn
	return qn, nil
}

func (repo *catalogRepository) DeleteQuestion(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.questions[id]; !ok {
		return catalog.ErrQuestionNotFound
	}
	delete(repo.db.questions, id)
	return nil
}
