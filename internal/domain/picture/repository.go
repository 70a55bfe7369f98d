package picture

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Repository defines picture data access interface
type Repository interface {
	ListAll(ctx context.Context) ([]*Picture, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*Picture, error)
	NamesByEvent(ctx context.Context, eventID int64) (map[string]bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new picture repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListAll(ctx context.Context) ([]*Picture, error) {
	query := `SELECT * FROM pictures ORDER BY id`
	var pics []*Picture
	err := r.db.SelectContext(ctx, &pics, query)
	return pics, err
}

func (r *repository) ListByEvent(ctx context.Context, eventID int64) ([]*Picture, error) {
	query := `SELECT * FROM pictures WHERE event_id = $1 ORDER BY name`
	var pics []*Picture
	err := r.db.SelectContext(ctx, &pics, query, eventID)
	return pics, err
}

func (r *repository) NamesByEvent(ctx context.Context, eventID int64) (map[string]bool, error) {
	query := `SELECT name FROM pictures WHERE event_id = $1`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query, eventID); err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(names))
	for _, name := range names {
		stored[name] = true
	}
	return stored, nil
}
