package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core/catalog"
	"github.com/geeky-hamster/Quizme/core/user"
	"github.com/geeky-hamster/Quizme/tests"
)

func Test_catalogApi_subjects(t *testing.T) {
	db.Flush()
	_, adminToken := createUser(t, "admin", user.RoleAdmin)
	_, userToken := createUser(t, "john", user.RoleUser)
	phys := testutil.CreateSubject(t, catRepo, "Physics")

	mathBody := []byte(`{"name":" Math ","description":"Numbers"}`)

	runHttpTests(t, []httpTest{
		{name: "auth required", path: "/subjects", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", method: http.MethodPost, path: "/subjects", body: mathBody, token: userToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "create", method: http.MethodPost, path: "/subjects", body: mathBody, token: adminToken,
			wantCode: http.StatusCreated, wantData: []byte(fmt.Sprintf(`{"id":%d,"name":"Math","description":"Numbers"}`, phys.ID+1)),
		},
		{
			name: "create (duplicate)", method: http.MethodPost, path: "/subjects", body: mathBody, token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Subject already exists", Fields: map[string]string{"name": "Subject already exists"}}),
		},
		{
			name: "create (no name)", method: http.MethodPost, path: "/subjects", body: []byte(`{"description":"x"}`), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "this field is required", Fields: map[string]string{"name": "this field is required"}}),
		},
		{
			name: "list (user)", path: "/subjects?ordering=-name", token: userToken, wantCode: http.StatusOK,
			wantData: []byte(fmt.Sprintf(`[{"id":%d,"name":"Physics","description":""},{"id":%d,"name":"Math","description":"Numbers"}]`, phys.ID, phys.ID+1)),
		},
		{name: "retrieve", path: fmt.Sprintf("/subjects/%d", phys.ID), token: userToken, wantCode: http.StatusOK, wantData: marchallObj(t, phys)},
		{name: "retrieve (unknown)", path: "/subjects/999", token: userToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "subject not found"})},
		{name: "retrieve (bad id)", path: "/subjects/abc", token: userToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"})},
		{
			name: "update (user)", method: http.MethodPut, path: fmt.Sprintf("/subjects/%d", phys.ID), body: []byte(`{"name":"Physique"}`), token: userToken,
			wantCode: http.StatusForbidden,
		},
		{
			name: "update", method: http.MethodPut, path: fmt.Sprintf("/subjects/%d", phys.ID), body: []byte(`{"name":"Physique"}`), token: adminToken,
			wantCode: http.StatusOK, wantData: []byte(fmt.Sprintf(`{"id":%d,"name":"Physique","description":""}`, phys.ID)),
		},
		{
			name: "update (taken name)", method: http.MethodPut, path: fmt.Sprintf("/subjects/%d", phys.ID), body: []byte(`{"name":"Math"}`), token: adminToken,
			wantCode: http.StatusBadRequest,
		},
		{name: "delete (user)", method: http.MethodDelete, path: fmt.Sprintf("/subjects/%d", phys.ID), token: userToken, wantCode: http.StatusForbidden},
		{name: "delete", method: http.MethodDelete, path: fmt.Sprintf("/subjects/%d", phys.ID), token: adminToken, wantCode: http.StatusNoContent},
		{name: "delete (gone)", method: http.MethodDelete, path: fmt.Sprintf("/subjects/%d", phys.ID), token: adminToken, wantCode: http.StatusNotFound},
	})
}

func Test_catalogApi_quizzes(t *testing.T) {
	db.Flush()
	_, adminToken := createUser(t, "admin", user.RoleAdmin)
	_, userToken := createUser(t, "john", user.RoleUser)
	sub := testutil.CreateSubject(t, catRepo, "Math")
	chap := testutil.CreateChapter(t, catRepo, sub, "Algebra")

	now := time.Now().UTC()
	quizBody := func(start, end time.Time, status string) []byte {
		return []byte(fmt.Sprintf(
			`{"title":"Basics","start_date":%q,"end_date":%q,"time_duration":30,"status":%q}`,
			start.Format(time.RFC3339), end.Format(time.RFC3339), status,
		))
	}
	quizzesPath := fmt.Sprintf("/chapters/%d/quizzes", chap.ID)

	runHttpTests(t, []httpTest{
		{
			name: "create (user)", method: http.MethodPost, path: quizzesPath, token: userToken,
			body: quizBody(now.Add(-time.Hour), now.Add(time.Hour), "active"), wantCode: http.StatusForbidden,
		},
		{
			name: "create (bad window)", method: http.MethodPost, path: quizzesPath, token: adminToken,
			body:     quizBody(now.Add(time.Hour), now.Add(-time.Hour), "active"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "End date must be after start date", Fields: map[string]string{"end_date": "End date must be after start date"}}),
		},
		{
			name: "create (bad status)", method: http.MethodPost, path: quizzesPath, token: adminToken,
			body: quizBody(now.Add(-time.Hour), now.Add(time.Hour), "archived"), wantCode: http.StatusBadRequest,
		},
		{
			name: "create (bad date)", method: http.MethodPost, path: quizzesPath, token: adminToken,
			body:     []byte(`{"title":"Basics","start_date":"yesterday","end_date":"2030-01-01T00:00:00Z","time_duration":30}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "create (no duration)", method: http.MethodPost, path: quizzesPath, token: adminToken,
			body:     []byte(`{"title":"Basics","start_date":"2020-01-01T00:00:00Z","end_date":"2030-01-01T00:00:00Z","time_duration":0}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "time_duration must be greater than 0", Fields: map[string]string{"time_duration": "time_duration must be greater than 0"}}),
		},
		{name: "list (unknown chapter)", path: "/chapters/999/quizzes", token: userToken, wantCode: http.StatusNotFound},
	})

	rec := do(http.MethodPost, quizzesPath, adminToken, quizBody(now.Add(-time.Hour), now.Add(time.Hour), "active"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created catalog.QuizView
	unmarshall(t, rec, &created)
	assert.Equal(t, chap.ID, created.ChapterID)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsExpired)
	assert.False(t, created.IsUpcoming)
	assert.Equal(t, catalog.StateActive, created.State)

	// draft by default, upcoming window
	rec = do(http.MethodPost, quizzesPath, adminToken, []byte(fmt.Sprintf(
		`{"title":"Later","start_date":%q,"end_date":%q,"time_duration":10}`,
		now.Add(time.Hour).Format(time.RFC3339), now.Add(2*time.Hour).Format(time.RFC3339),
	)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var later catalog.QuizView
	unmarshall(t, rec, &later)
	assert.Equal(t, catalog.StatusDraft, later.Status)
	assert.True(t, later.IsUpcoming)
	assert.False(t, later.IsActive)

	rec = do(http.MethodGet, quizzesPath+"?ordering=-title", userToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var views []catalog.QuizView
	unmarshall(t, rec, &views)
	require.Len(t, views, 2)
	assert.Equal(t, "Later", views[0].Title)
	assert.Equal(t, "Basics", views[1].Title)

	// update keeps the status when omitted
	rec = do(http.MethodPut, fmt.Sprintf("/quizzes/%d", created.ID), adminToken, []byte(fmt.Sprintf(
		`{"title":"Basics II","start_date":%q,"end_date":%q,"time_duration":45}`,
		now.Add(-2*time.Hour).Format(time.RFC3339), now.Add(-time.Hour).Format(time.RFC3339),
	)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated catalog.QuizView
	unmarshall(t, rec, &updated)
	assert.Equal(t, "Basics II", updated.Title)
	assert.Equal(t, catalog.StatusActive, updated.Status)
	assert.Equal(t, 45, updated.TimeDuration)
	assert.True(t, updated.IsExpired)
	assert.Equal(t, catalog.StateExpired, updated.State)
}

func Test_catalogApi_questions(t *testing.T) {
	db.Flush()
	_, adminToken := createUser(t, "admin", user.RoleAdmin)
	_, userToken := createUser(t, "john", user.RoleUser)
	sub := testutil.CreateSubject(t, catRepo, "Math")
	chap := testutil.CreateChapter(t, catRepo, sub, "Algebra")
	now := time.Now()
	qz := testutil.CreateQuiz(t, catRepo, chap, "Basics", catalog.StatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	questionsPath := fmt.Sprintf("/quizzes/%d/questions", qz.ID)
	body := []byte(`{"question_statement":"1+1?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":2}`)

	runHttpTests(t, []httpTest{
		{name: "create (user)", method: http.MethodPost, path: questionsPath, body: body, token: userToken, wantCode: http.StatusForbidden},
		{
			name: "create (bad option)", method: http.MethodPost, path: questionsPath, token: adminToken,
			body:     []byte(`{"question_statement":"1+1?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":5}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "Correct option must be between 1 and 4", Fields: map[string]string{"correct_option": "Correct option must be between 1 and 4"}}),
		},
	})

	rec := do(http.MethodPost, questionsPath, adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created catalog.QuestionView
	unmarshall(t, rec, &created)
	require.NotNil(t, created.CorrectOption)
	assert.Equal(t, 2, *created.CorrectOption)

	adminView := fmt.Sprintf(`{"id":%d,"quiz_id":%d,"question_statement":"1+1?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":2}`, created.ID, qz.ID)
	userView := fmt.Sprintf(`{"id":%d,"quiz_id":%d,"question_statement":"1+1?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":null}`, created.ID, qz.ID)

	runHttpTests(t, []httpTest{
		{name: "list (admin)", path: questionsPath, token: adminToken, wantCode: http.StatusOK, wantData: []byte("[" + adminView + "]")},
		{name: "list (user)", path: questionsPath, token: userToken, wantCode: http.StatusOK, wantData: []byte("[" + userView + "]")},
		{name: "retrieve (admin)", path: fmt.Sprintf("/questions/%d", created.ID), token: adminToken, wantCode: http.StatusOK, wantData: []byte(adminView)},
		{name: "retrieve (user)", path: fmt.Sprintf("/questions/%d", created.ID), token: userToken, wantCode: http.StatusOK, wantData: []byte(userView)},
		{
			name: "update", method: http.MethodPut, path: fmt.Sprintf("/questions/%d", created.ID), token: adminToken,
			body:     []byte(`{"question_statement":"2+2?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":4}`),
			wantCode: http.StatusOK,
			wantData: []byte(fmt.Sprintf(`{"id":%d,"quiz_id":%d,"question_statement":"2+2?","option1":"1","option2":"2","option3":"3","option4":"4","correct_option":4}`, created.ID, qz.ID)),
		},
		{name: "delete", method: http.MethodDelete, path: fmt.Sprintf("/questions/%d", created.ID), token: adminToken, wantCode: http.StatusNoContent},
		{name: "list (empty)", path: questionsPath, token: adminToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})
}

func Test_catalogApi_cascadeDelete(t *testing.T) {
	db.Flush()
	_, adminToken := createUser(t, "admin", user.RoleAdmin)
	usr, userToken := createUser(t, "john", user.RoleUser)
	sub := testutil.CreateSubject(t, catRepo, "Math")
	chap := testutil.CreateChapter(t, catRepo, sub, "Algebra")
	now := time.Now()
	qz := testutil.CreateQuiz(t, catRepo, chap, "Basics", catalog.StatusActive, now.Add(-time.Hour), now.Add(time.Hour))
	qn := testutil.CreateQuestion(t, catRepo, qz, "1+1?", 2)

	rec := do(http.MethodPost, fmt.Sprintf("/quizzes/%d/attempt", qz.ID), userToken, []byte(fmt.Sprintf(`{"answers":{"%d":2}}`, qn.ID)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodDelete, fmt.Sprintf("/subjects/%d", sub.ID), adminToken)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	runHttpTests(t, []httpTest{
		{name: "chapter gone", path: fmt.Sprintf("/chapters/%d", chap.ID), token: adminToken, wantCode: http.StatusNotFound},
		{name: "quiz gone", path: fmt.Sprintf("/quizzes/%d", qz.ID), token: adminToken, wantCode: http.StatusNotFound},
		{name: "question gone", path: fmt.Sprintf("/questions/%d", qn.ID), token: adminToken, wantCode: http.StatusNotFound},
		{name: "scores gone", path: "/my-scores", token: userToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	_, err := usrRepo.GetUser(ctx(), user.GetFilter{ID: usr.ID})
	assert.NoError(t, err, "users are not owned by the catalog")
}
