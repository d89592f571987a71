package main

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
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

var (
	usrRepo user.Repository
	catRepo catalog.Repository
	mailSvc *emailsvc.ConsoleService
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := core.NewTestConfig()
	validate, _ := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	catRepo = inmemdb.NewCatalogRepository(db)
	mailSvc = emailsvc.NewConsoleServiceMock(conf)

	usrSvc := user.NewService(usrRepo, validate)
	catSvc := catalog.NewService(catRepo, validate)
	attemptSvc := attempt.NewService(inmemdb.NewScoreRepository(db), catSvc)

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		db:       new(sqlx.DB),
		usrSvc:   usrSvc,
		notifier: notify.NewNotifier(usrSvc, attemptSvc, mailSvc, conf, testutil.NewLogger()),
		out:      out,
	}, out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(_ context.Context, _ *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "add_index", "sql"}},
	}, nil)

	t.Run("in-memory engine", func(t *testing.T) {
		cli.db = nil
		assert.Equal(t, errNoDatabase, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func mockPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli, out := setup(t)
	learner := testutil.CreateUser(t, usrRepo, "john@test.com", "secret-pwd", "John Doe", user.RoleUser)

	mockPassword("")
	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no username", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "no password", args: []string{"addadmin", "-username", "boss@test.com"}, wantErr: errHelp},
	}, nil)

	mockPassword("n3w-pwd!")
	runCLITests(t, cli, []cliTest{
		{name: "create", args: []string{"addadmin", "-username", "Boss@Test.com", "-fullname", "The Boss"}, extra: "boss@test.com"},
		{name: "promote", args: []string{"addadmin", "-username", learner.Username}, extra: learner.Username},
	}, func(t *testing.T, tt cliTest) {
		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: tt.extra.(string)})
		require.NoError(t, err)
		assert.True(t, usr.IsAdmin())
		assert.NoError(t, usr.CheckPassword("n3w-pwd!"))
		assert.Contains(t, out.String(), fmt.Sprintf("admin %q saved", usr.Username))
	})

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "boss@test.com"})
	require.NoError(t, err)
	assert.Equal(t, "The Boss", usr.FullName)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, out := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "awe@test.cd", "old-pwd", "Awe", user.RoleUser)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		var pwd string
		if ex, ok := tt.extra.(extra); ok {
			pwd = ex.pwd
		}
		mockPassword(pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
			require.NoError(t, err)
			assert.NoError(t, refreshedUsr.CheckPassword(pwd))
			assert.Contains(t, out.String(), fmt.Sprintf("password of %q reset", usr.Username))
		})
	}
}

func Test_commandLine_notify(t *testing.T) {
	cli, out := setup(t)

	_ = testutil.CreateUser(t, usrRepo, "admin@test.com", "pwd", "Admin", user.RoleAdmin)
	_ = testutil.CreateUser(t, usrRepo, "john@test.com", "pwd", "John Doe", user.RoleUser)
	_ = testutil.CreateUser(t, usrRepo, "nomail", "pwd", "No Mail", user.RoleUser)

	chap := testutil.CreateChapter(t, catRepo, testutil.CreateSubject(t, catRepo, "Math"), "Algebra")
	now := time.Now()
	_ = testutil.CreateQuiz(t, catRepo, chap, "Open", catalog.StatusActive, now.Add(-time.Hour), now.Add(time.Hour))

	runCLITests(t, cli, []cliTest{
		{name: "no period", args: []string{"notify"}, wantErr: errHelp},
		{name: "unknown period", args: []string{"notify", "weekly"}, wantErrStr: `unknown notification period "weekly"`},
	}, nil)

	t.Run("daily", func(t *testing.T) {
		mailSvc.Reset()
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "notify", "daily"}))

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "john@test.com", sent[0].To[0].Address)
		assert.Equal(t, notify.Daily.Subject, sent[0].Subject)
		dg := sent[0].TemplateData.(notify.Digest)
		assert.Equal(t, 1, dg.AvailableQuizzes)

		assert.Contains(t, out.String(), "Mail sent to John Doe - Recent scores: 0, Performance: 0.00% (Needs Improvement)")
		assert.Contains(t, out.String(), "daily: 1 sent, 1 skipped, 0 failed")
	})

	t.Run("monthly", func(t *testing.T) {
		mailSvc.Reset()
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "notify", "Monthly"}))

		require.Len(t, mailSvc.SentMessages(), 1)
		assert.Contains(t, out.String(), "Monthly report sent to John Doe - Total scores: 0, Avg: 0.00%, Best: 0.00%")
		assert.Contains(t, out.String(), "monthly: 1 sent, 1 skipped, 0 failed")
	})
}
