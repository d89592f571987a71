package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/geeky-hamster/Quizme/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const dobLayout = "2006-01-02"

var AllRoles = []string{RoleAdmin, RoleUser}

type User struct {
	ID            int       `json:"id"`
	Username      string    `json:"username"` // also the mailing address
	PasswordHash  []byte    `json:"-"`
	FullName      string    `json:"full_name"`
	Qualification string    `json:"qualification"`
	DOB           time.Time `json:"-"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	LastLogin     time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile is the public representation of a User.
type Profile struct {
	ID            int        `json:"id"`
	Username      string     `json:"username"`
	FullName      string     `json:"full_name"`
	Qualification string     `json:"qualification"`
	DOB           string     `json:"dob"`
	Role          string     `json:"role"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login"`
}

func (u User) Profile() Profile {
	p := Profile{
		ID:            u.ID,
		Username:      u.Username,
		FullName:      u.FullName,
		Qualification: u.Qualification,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
	if !u.DOB.IsZero() {
		p.DOB = u.DOB.Format(dobLayout)
	}
	if !u.LastLogin.IsZero() {
		ll := u.LastLogin
		p.LastLogin = &ll
	}
	return p
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username      string `json:"username" validate:"required,max=120"`
	Password      string `json:"password" validate:"required"`
	FullName      string `json:"full_name" validate:"required,max=100"`
	Qualification string `json:"qualification" validate:"required,max=100"`
	DOB           string `json:"dob" validate:"required,datetime=2006-01-02"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Qualification = core.CleanString(nu.Qualification)
	nu.DOB = core.CleanString(nu.DOB)
	return validate.Struct(nu)
}

// Credentials are exchanged for a token at login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username, true /* lower */)
	return validate.Struct(c)
}

type GetFilter struct {
	ID       int
	Username string
}

type QueryFilter struct {
	Search string `query:"search"`
	Role   string `query:"role"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
