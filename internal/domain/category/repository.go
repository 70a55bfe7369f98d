package category

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Repository defines category data access interface
type Repository interface {
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new category repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByName(ctx context.Context, name string) (*Category, error) {
	query := `SELECT * FROM categories WHERE name = $1`
	var cat Category
	err := r.db.GetContext(ctx, &cat, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	query := `SELECT * FROM categories ORDER BY id`
	var cats []*Category
	err := r.db.SelectContext(ctx, &cats, query)
	return cats, err
}
