package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

type sqlUserRepository struct {
	db *sqlx.DB
}

func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, is_admin, created_at`

func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO users (username, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.NewError(common.ErrConflict, "Username or email already exists")
		}
		return fmt.Errorf("sqlUserRepository.Create: %w", err)
	}
	user.ID = id
	return nil
}

func (r *sqlUserRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE `+where+` = ?`), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *sqlUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.findOne(ctx, "email", email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("sqlUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *sqlUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := r.findOne(ctx, "username", username)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("sqlUserRepository.FindByUsername: %w", err)
	}
	return user, err
}

func (r *sqlUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := r.findOne(ctx, "id", id)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("sqlUserRepository.FindByID: %w", err)
	}
	return user, err
}
