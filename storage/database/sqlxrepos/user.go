package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/geeky-hamster/Quizme/core/user"
	"github.com/geeky-hamster/Quizme/storage/database"
)

const userColumns = "id, username, password_hash, full_name, qualification, dob, role, created_at, last_login"

type dbUser struct {
	ID            int       `db:"id"`
	Username      string    `db:"username"`
	PasswordHash  []byte    `db:"password_hash"`
	FullName      string    `db:"full_name"`
	Qualification string    `db:"qualification"`
	DOB           time.Time `db:"dob"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	LastLogin     null.Time `db:"last_login"`
}

func (u dbUser) toUser() user.User {
	usr := user.User{
		ID:            u.ID,
		Username:      u.Username,
		PasswordHash:  u.PasswordHash,
		FullName:      u.FullName,
		Qualification: u.Qualification,
		DOB:           u.DOB.UTC(),
		Role:          u.Role,
		CreatedAt:     u.CreatedAt.UTC(),
	}
	if u.LastLogin.Valid {
		usr.LastLogin = u.LastLogin.Time.UTC()
	}
	return usr
}

func lastLogin(usr user.User) null.Time {
	return null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero())
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `INSERT INTO users (username, password_hash, full_name, qualification, dob, role, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := repo.db.GetContext(ctx, &usr.ID, q,
		usr.Username, usr.PasswordHash, usr.FullName, usr.Qualification, usr.DOB, usr.Role, usr.CreatedAt, lastLogin(usr))
	if err != nil {
		if database.IsUniqueViolation(err, "users_username_key") {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var cond conditions
	switch {
	case filter.ID != 0:
		cond.add("id = ?", filter.ID)
	case filter.Username != "":
		cond.add("username = ?", filter.Username)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row dbUser
	if err := get(ctx, repo.db, &row, user.ErrNotFound, "SELECT "+userColumns+" FROM users"+cond.where(), cond.args...); err != nil {
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	var cond conditions
	if filter.Role != "" {
		cond.add("role = ?", filter.Role)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		cond.add("(username ILIKE ? OR full_name ILIKE ?)", pattern)
	}

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, "SELECT "+userColumns+" FROM users"+cond.where()+" ORDER BY id", cond.args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const q = `UPDATE users SET username = $2, password_hash = $3, full_name = $4, qualification = $5, dob = $6,
		role = $7, last_login = $8 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.Username, usr.PasswordHash, usr.FullName, usr.Qualification, usr.DOB, usr.Role, lastLogin(usr))
	if database.IsUniqueViolation(err, "users_username_key") {
		return user.User{}, user.ErrUsernameExists
	}
	if err = checkAffected(res, err, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}
