package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository defines user data access interface
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, hashedPassword string) (*User, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT * FROM users WHERE username = $1`
	var u User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, username, hashedPassword string) (*User, error) {
	query := `INSERT INTO users (username, hashed_password) VALUES ($1, $2) RETURNING id`
	u := &User{Username: username, HashedPassword: hashedPassword}
	if err := r.db.GetContext(ctx, &u.ID, query, username, hashedPassword); err != nil {
		return nil, mapUserDBError(err)
	}
	return u, nil
}
