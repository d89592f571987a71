package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core/user"
)

func Test_userApi_register(t *testing.T) {
	db.Flush()

	valid := []byte(`{"username":"John@Example.com","password":"s3cret!pass","full_name":"John Doe","qualification":"BSc","dob":"1999-04-12"}`)

	runHttpTests(t, []httpTest{
		{
			name: "ok", method: http.MethodPost, path: "/register", body: valid,
			wantCode: http.StatusCreated, wantData: []byte(`{"message":"User registered successfully"}`),
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/register", body: valid,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "User already exists", Fields: map[string]string{"username": "User already exists"}}),
		},
		{
			name: "password too short", method: http.MethodPost, path: "/register",
			body:     []byte(`{"username":"jane","password":"abc","full_name":"Jane Doe","qualification":"BSc","dob":"1999-04-12"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{
				Error:  "password must contain at least 6 characters",
				Fields: map[string]string{"password": "password must contain at least 6 characters"},
			}),
		},
		{
			name: "password too similar", method: http.MethodPost, path: "/register",
			body:     []byte(`{"username":"jane","password":"jane doe1","full_name":"Jane Doe","qualification":"BSc","dob":"1999-04-12"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "bad dob", method: http.MethodPost, path: "/register",
			body:     []byte(`{"username":"jane","password":"s3cret!pass","full_name":"Jane Doe","qualification":"BSc","dob":"12/04/1999"}`),
			wantCode: http.StatusBadRequest,
		},
	})

	usr, err := usrRepo.GetUser(ctx(), user.GetFilter{Username: "john@example.com"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, usr.Role)
	assert.Equal(t, "1999-04-12", usr.Profile().DOB)
}

func Test_userApi_register_missingFields(t *testing.T) {
	db.Flush()

	rec := do(http.MethodPost, "/register", "", []byte(`{"username":"john"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp httpErr
	unmarshall(t, rec, &resp)
	assert.NotEmpty(t, resp.Error)
	for _, fld := range []string{"password", "full_name", "qualification", "dob"} {
		assert.Contains(t, resp.Fields, fld)
	}
}

func Test_userApi_login(t *testing.T) {
	db.Flush()

	rec := do(http.MethodPost, "/register", "", []byte(`{"username":"john","password":"s3cret!pass","full_name":"John Doe","qualification":"BSc","dob":"1999-04-12"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	runHttpTests(t, []httpTest{
		{
			name: "wrong password", method: http.MethodPost, path: "/login",
			body:     []byte(`{"username":"john","password":"nope"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/login",
			body:     []byte(`{"username":"jane","password":"s3cret!pass"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "missing password", method: http.MethodPost, path: "/login",
			body: []byte(`{"username":"john"}`), wantCode: http.StatusBadRequest,
		},
	})

	rec = do(http.MethodPost, "/login", "", []byte(`{"username":" JOHN ","password":"s3cret!pass"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		Role    string `json:"role"`
	}
	unmarshall(t, rec, &resp)
	assert.Equal(t, "Login successful", resp.Message)
	assert.Equal(t, user.RoleUser, resp.Role)
	require.NotEmpty(t, resp.Token)

	// the token authenticates the user
	rec = do(http.MethodGet, "/me", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var prof user.Profile
	unmarshall(t, rec, &prof)
	assert.Equal(t, "john", prof.Username)
	assert.Equal(t, "John Doe", prof.FullName)
	assert.NotNil(t, prof.LastLogin)
}

func Test_userApi_tokenRefresh(t *testing.T) {
	db.Flush()
	_, token := createUser(t, "john", user.RoleUser)

	rec := do(http.MethodPost, "/token-refresh", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	unmarshall(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	runHttpTests(t, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/token-refresh", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "bad token", method: http.MethodPost, path: "/token-refresh", token: "not-a-jwt", wantCode: http.StatusUnauthorized},
	})
}

func Test_userApi_query(t *testing.T) {
	db.Flush()
	admin, adminToken := createUser(t, "admin", user.RoleAdmin)
	john, userToken := createUser(t, "john", user.RoleUser)
	_, _ = createUser(t, "jane", user.RoleUser)

	runHttpTests(t, []httpTest{
		{name: "auth required", path: "/admin/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin required", path: "/admin/users", token: userToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "search", path: "/admin/users?search=JOH", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, []user.Profile{john.Profile()})},
		{name: "role", path: "/admin/users?role=admin", token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, []user.Profile{admin.Profile()})},
		{name: "search (unknown)", path: "/admin/users?search=lol", token: adminToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	rec := do(http.MethodGet, "/admin/users", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var profiles []user.Profile
	unmarshall(t, rec, &profiles)
	assert.Len(t, profiles, 3)
}
