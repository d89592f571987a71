package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrUsernameExists     = errors.New("User already exists")
	ErrInvalidCredentials = errors.New("Invalid credentials")
)

type (
	Repository interface {
		// CreateUser fails with ErrUsernameExists when the username is taken.
		CreateUser(ctx context.Context, usr User) (User, error)
		// GetUser matches on the first non-zero field of filter.
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// QueryUsers applies AND on the non-zero fields of filter.
		// QueryFilter.Search does a case-insensitive match on User.Username or User.FullName.
		QueryUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		NowFunc  func() time.Time
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate, NowFunc: time.Now}
}

func (svc *Service) now() time.Time {
	return svc.NowFunc().UTC()
}

// Register creates a regular (non-admin) user.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}
	dob, err := time.Parse(dobLayout, nu.DOB)
	if err != nil {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "dob", Error: "must be a YYYY-MM-DD date"})
	}
	usr := User{
		Username:      nu.Username,
		FullName:      nu.FullName,
		Qualification: nu.Qualification,
		DOB:           dob,
		Role:          RoleUser,
		CreatedAt:     svc.now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.create(ctx, usr)
}

func (svc *Service) create(ctx context.Context, usr User) (User, error) {
	usr, err := svc.repo.CreateUser(ctx, usr)
	if errors.Cause(err) == ErrUsernameExists {
		return User{}, core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return usr, err
}

// Authenticate checks the credentials and records the login time.
func (svc *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(svc.validate); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: creds.Username})
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(creds.Password); err != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = svc.now()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter)
}

// Learners returns every non-admin user.
func (svc *Service) Learners(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsers(ctx, QueryFilter{Role: RoleUser})
}

// EnsureAdmin seeds an admin account when none exists. It reports whether one was created.
func (svc *Service) EnsureAdmin(ctx context.Context, conf core.AdminConfig) (User, bool, error) {
	admins, err := svc.repo.QueryUsers(ctx, QueryFilter{Role: RoleAdmin})
	if err != nil {
		return User{}, false, err
	}
	if len(admins) > 0 {
		return admins[0], false, nil
	}
	usr, err := svc.SaveAdmin(ctx, conf.Username, conf.Password, conf.FullName)
	return usr, err == nil, err
}

// SaveAdmin creates an admin account, or promotes an existing user and resets its password.
func (svc *Service) SaveAdmin(ctx context.Context, uname, pwd, fullName string) (User, error) {
	uname = core.CleanString(uname, true /* lower */)
	if uname == "" || pwd == "" {
		return User{}, core.NewValidationError(errors.New("username and password are required"))
	}
	if fullName = core.CleanString(fullName); fullName == "" {
		fullName = uname
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Username: uname})
	switch {
	case core.IsNotFound(err):
		usr = User{
			Username:      uname,
			FullName:      fullName,
			Qualification: "PhD",
			DOB:           time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
			Role:          RoleAdmin,
			CreatedAt:     svc.now(),
		}
		if err := usr.SetPassword(pwd); err != nil {
			return User{}, err
		}
		return svc.create(ctx, usr)
	case err != nil:
		return User{}, err
	}

	usr.Role = RoleAdmin
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, err
	}
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) ResetPassword(ctx context.Context, uname, pwd string) error {
	if pwd == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
	}
	usr, err := svc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
