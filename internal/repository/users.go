package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/mkjeong/leadnet/internal/model"
)

// UsersRepository defines persistence for the users table. Lookups return
// (nil, nil) when no row matches.
type UsersRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ListRefs(ctx context.Context) ([]model.UserRef, error)
	ListByUsernames(ctx context.Context, usernames []string, limit, offset int) ([]model.User, error)
	CountByUsernames(ctx context.Context, usernames []string) (int64, error)
	Insert(ctx context.Context, u model.User) error
	Save(ctx context.Context, u model.User) error
	Delete(ctx context.Context, id string) (bool, error)
}

type UsersRepositoryImpl struct {
	db *sqlx.DB
}

func NewUsersRepository(db *sqlx.DB) *UsersRepositoryImpl {
	return &UsersRepositoryImpl{db: db}
}

var _ UsersRepository = (*UsersRepositoryImpl)(nil)

const userColumns = `id, username, email, firstname, lastname, password_hash, status, referrer, user_level, created_at, updated_at`

func (r *UsersRepositoryImpl) getBy(ctx context.Context, column, value string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, `
		SELECT `+userColumns+`
		  FROM users
		 WHERE `+column+` = ? LIMIT 1
	`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepositoryImpl) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UsersRepositoryImpl) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UsersRepositoryImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username", username)
}

// ListRefs returns the username/referrer projection of every user, one scan
// per hierarchy resolution.
func (r *UsersRepositoryImpl) ListRefs(ctx context.Context) ([]model.UserRef, error) {
	refs := []model.UserRef{}
	err := r.db.SelectContext(ctx, &refs, `SELECT username, referrer FROM users`)
	if err != nil {
		return nil, err
	}
	return refs, nil
}

func (r *UsersRepositoryImpl) ListByUsernames(ctx context.Context, usernames []string, limit, offset int) ([]model.User, error) {
	if len(usernames) == 0 {
		return []model.User{}, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+userColumns+`
		  FROM users
		 WHERE username IN (?)
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?
	`, usernames, limit, offset)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UsersRepositoryImpl) CountByUsernames(ctx context.Context, usernames []string) (int64, error) {
	if len(usernames) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM users WHERE username IN (?)`, usernames)
	if err != nil {
		return 0, err
	}
	query = r.db.Rebind(query)

	var n int64
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *UsersRepositoryImpl) Insert(ctx context.Context, u model.User) error {
	const q = `
		INSERT INTO users
		    (id, username, email, firstname, lastname, password_hash, status, referrer, user_level, created_at, updated_at)
		VALUES
		    (?,  ?,        ?,     ?,         ?,        ?,             ?,      ?,        ?,          NOW(),      NOW())
	`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Username, u.Email, u.Firstname, u.Lastname,
		u.PasswordHash, u.Status, u.Referrer, u.UserLevel,
	)
	return err
}

// Save persists the full row for the user's id.
func (r *UsersRepositoryImpl) Save(ctx context.Context, u model.User) error {
	const q = `
		UPDATE users
		   SET username = ?, email = ?, firstname = ?, lastname = ?,
		       password_hash = ?, status = ?, referrer = ?, user_level = ?,
		       updated_at = NOW()
		 WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, q,
		u.Username, u.Email, u.Firstname, u.Lastname,
		u.PasswordHash, u.Status, u.Referrer, u.UserLevel, u.ID,
	)
	return err
}

func (r *UsersRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
