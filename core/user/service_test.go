package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geeky-hamster/Quizme/core"
	"github.com/geeky-hamster/Quizme/core/user"
	inmemdb "github.com/geeky-hamster/Quizme/storage/database/inmem"
	"github.com/geeky-hamster/Quizme/tests"
)

var now = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func setup() (*user.Service, user.Repository) {
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	svc := user.NewService(repo, validate)
	svc.NowFunc = testutil.FixedClock(now)
	return svc, repo
}

func newUser() user.NewUser {
	return user.NewUser{
		Username:      " John@Test.com ",
		Password:      "s3cure-pwd",
		FullName:      "John Doe ",
		Qualification: "BSc",
		DOB:           "2000-02-29",
	}
}

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	tags := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func TestService_Register(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	usr, err := svc.Register(ctx, newUser())
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, "john@test.com", usr.Username)
	assert.Equal(t, "John Doe", usr.FullName)
	assert.Equal(t, user.RoleUser, usr.Role)
	assert.Equal(t, time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC), usr.DOB)
	assert.Equal(t, now, usr.CreatedAt)
	assert.NoError(t, usr.CheckPassword("s3cure-pwd"))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, newUser())
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, user.ErrUsernameExists, verr.Err)
		assert.Equal(t, []core.FieldError{{Field: "username", Error: "User already exists"}}, verr.Fields)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Register(ctx, user.NewUser{})
		assert.Equal(t, map[string]string{
			"username":      "required",
			"password":      "required",
			"full_name":     "required",
			"qualification": "required",
			"dob":           "required",
		}, failedTags(t, err))
	})

	t.Run("bad dob", func(t *testing.T) {
		nu := newUser()
		nu.Username = "other@test.com"
		nu.DOB = "29/02/2000"
		_, err := svc.Register(ctx, nu)
		assert.Equal(t, map[string]string{"dob": "datetime"}, failedTags(t, err))
	})
}

func TestPasswordPolicy(t *testing.T) {
	svc, _ := setup()
	tests := []struct {
		pwd     string
		wantTag string
	}{
		{pwd: "ab1", wantTag: "pwdminlen"},
		{pwd: "has space", wantTag: "pwdnospace"},
		{pwd: "12345678", wantTag: "pwdnotallnum"},
		{pwd: "maryjane", wantTag: "pwdtoosim"}, // full name
		{pwd: "mary@quiz.io", wantTag: "pwdtoosim"},
		{pwd: "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.pwd, func(t *testing.T) {
			_, err := svc.Register(context.Background(), user.NewUser{
				Username:      "mary@quiz.io",
				Password:      tt.pwd,
				FullName:      "Mary Jane",
				Qualification: "MSc",
				DOB:           "1999-12-31",
			})
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, map[string]string{"password": tt.wantTag}, failedTags(t, err))
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	created := testutil.CreateUser(t, repo, "john@test.com", "s3cure-pwd", "John", user.RoleUser)
	assert.True(t, created.LastLogin.IsZero())

	_, err := svc.Authenticate(ctx, user.Credentials{Username: "john@test.com", Password: "nope"})
	assert.Equal(t, user.ErrInvalidCredentials, err)

	_, err = svc.Authenticate(ctx, user.Credentials{Username: "ghost@test.com", Password: "s3cure-pwd"})
	assert.Equal(t, user.ErrInvalidCredentials, err)

	_, err = svc.Authenticate(ctx, user.Credentials{Username: "john@test.com"})
	assert.Equal(t, map[string]string{"password": "required"}, failedTags(t, err))

	usr, err := svc.Authenticate(ctx, user.Credentials{Username: " JOHN@test.com", Password: "s3cure-pwd"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, usr.ID)
	assert.Equal(t, now, usr.LastLogin)

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, now, stored.LastLogin)
	require.NotNil(t, stored.Profile().LastLogin)
}

func TestService_Query(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	_ = testutil.CreateUser(t, repo, "admin@test.com", "", "The Admin", user.RoleAdmin)
	_ = testutil.CreateUser(t, repo, "john@test.com", "", "John Doe", user.RoleUser)
	_ = testutil.CreateUser(t, repo, "jane@test.com", "", "Jane Doe", user.RoleUser)

	usernames := func(users []user.User) []string {
		res := make([]string, 0, len(users))
		for _, u := range users {
			res = append(res, u.Username)
		}
		return res
	}

	users, err := svc.Query(ctx, user.QueryFilter{Search: " doe "})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"john@test.com", "jane@test.com"}, usernames(users))

	users, err = svc.Query(ctx, user.QueryFilter{Role: "ADMIN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@test.com"}, usernames(users))

	users, err = svc.Learners(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"john@test.com", "jane@test.com"}, usernames(users))
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	conf := core.NewTestConfig().Admin

	usr, created, err := svc.EnsureAdmin(ctx, conf)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin@quizmaster.com", usr.Username)
	assert.True(t, usr.IsAdmin())
	assert.NoError(t, usr.CheckPassword("admin123"))

	again, created, err := svc.EnsureAdmin(ctx, conf)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, usr.ID, again.ID)

	admins, err := repo.QueryUsers(ctx, user.QueryFilter{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestService_SaveAdmin(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	learner := testutil.CreateUser(t, repo, "john@test.com", "old-pwd", "John", user.RoleUser)

	_, err := svc.SaveAdmin(ctx, " ", "pwd", "")
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)

	usr, err := svc.SaveAdmin(ctx, "John@Test.com", "new-pwd", "")
	require.NoError(t, err)
	assert.Equal(t, learner.ID, usr.ID)
	assert.True(t, usr.IsAdmin())
	assert.Equal(t, "John", usr.FullName)
	assert.NoError(t, usr.CheckPassword("new-pwd"))

	usr, err = svc.SaveAdmin(ctx, "boss@test.com", "boss-pwd", "")
	require.NoError(t, err)
	assert.Equal(t, "boss@test.com", usr.FullName)
	assert.True(t, usr.IsAdmin())
}

func TestService_ResetPassword(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "john@test.com", "old-pwd", "John", user.RoleUser)

	assert.Equal(t, user.ErrNotFound, svc.ResetPassword(ctx, "ghost@test.com", "pwd"))

	var verr *core.ValidationError
	assert.ErrorAs(t, svc.ResetPassword(ctx, usr.Username, ""), &verr)

	require.NoError(t, svc.ResetPassword(ctx, " JOHN@test.com ", "new-pwd"))
	stored, err := svc.GetByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.NoError(t, stored.CheckPassword("new-pwd"))
	assert.Error(t, stored.CheckPassword("old-pwd"))
}
