package event

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/velmuzhov/photosite/internal/domain/picture"
)

// Repository defines event data access. Multi-row mutations run in a single
// transaction so the uniqueness checks and the writes that depend on them
// cannot be split by a concurrent request.
type Repository interface {
	GetByCategoryAndDate(ctx context.Context, categoryName string, date time.Time) (*Event, error)
	ListByCategory(ctx context.Context, categoryName string, limit, offset int, activeOnly bool) (int, []*Event, error)
	ListByCreated(ctx context.Context, limit, offset int) (int, []*Event, error)
	ListInactive(ctx context.Context) ([]*Event, error)

	CreateWithPictures(ctx context.Context, ev *Event, pics []*picture.Picture, writeFiles func(context.Context) error) error
	AddPictures(ctx context.Context, eventID int64, pics []*picture.Picture, writeFiles func(context.Context) error) error
	UpdateBaseData(ctx context.Context, eventID, newCategoryID int64, newDate time.Time, newPathPrefix string, newCover sql.NullString) error
	UpdateDescription(ctx context.Context, eventID int64, description sql.NullString) error
	UpdateCover(ctx context.Context, eventID int64, cover sql.NullString) error
	ToggleActive(ctx context.Context, eventID int64) (bool, error)
	Delete(ctx context.Context, eventID int64) error
	DeletePicturesByPaths(ctx context.Context, paths []string) ([]*picture.Picture, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new event repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const eventColumns = `
	e.id, e.date, e.category_id, e.cover, e.description, e.created, e.active,
	c.name AS category_name
`

func (r *repository) GetByCategoryAndDate(ctx context.Context, categoryName string, date time.Time) (*Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN categories c ON c.id = e.category_id
		WHERE c.name = $1 AND e.date = $2
	`
	var ev Event
	err := r.db.GetContext(ctx, &ev, query, categoryName, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

func (r *repository) ListByCategory(ctx context.Context, categoryName string, limit, offset int, activeOnly bool) (int, []*Event, error) {
	filter := ``
	if activeOnly {
		filter = ` AND e.active`
	}

	countQuery := `
		SELECT COUNT(*)
		FROM events e
		JOIN categories c ON c.id = e.category_id
		WHERE c.name = $1` + filter
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, categoryName); err != nil {
		return 0, nil, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN categories c ON c.id = e.category_id
		WHERE c.name = $1` + filter + `
		ORDER BY e.date DESC
		LIMIT $2 OFFSET $3
	`
	var events []*Event
	if err := r.db.SelectContext(ctx, &events, query, categoryName, limit, offset); err != nil {
		return 0, nil, err
	}
	return total, events, nil
}

func (r *repository) ListByCreated(ctx context.Context, limit, offset int) (int, []*Event, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, nil, err
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN categories c ON c.id = e.category_id
		ORDER BY e.created DESC
		LIMIT $1 OFFSET $2
	`
	var events []*Event
	if err := r.db.SelectContext(ctx, &events, query, limit, offset); err != nil {
		return 0, nil, err
	}
	return total, events, nil
}

func (r *repository) ListInactive(ctx context.Context) ([]*Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN categories c ON c.id = e.category_id
		WHERE NOT e.active
		ORDER BY e.date DESC
	`
	var events []*Event
	err := r.db.SelectContext(ctx, &events, query)
	return events, err
}

// CreateWithPictures inserts the event and its picture rows, then runs
// writeFiles before committing. The commit is the point of no return: a
// file-write failure rolls the rows back, and the caller's writeFiles is
// responsible for cleaning up anything it already put on disk.
func (r *repository) CreateWithPictures(ctx context.Context, ev *Event, pics []*picture.Picture, writeFiles func(context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Uniqueness pre-check in the same transaction as the insert; a race
	// lost here still maps via the (date, category_id) constraint below.
	var existing int64
	err = tx.GetContext(ctx, &existing,
		`SELECT id FROM events WHERE category_id = $1 AND date = $2`,
		ev.CategoryID, ev.Date)
	if err == nil {
		return ErrDuplicateEvent
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	row := tx.QueryRowxContext(ctx,
		`INSERT INTO events (date, category_id, cover, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created, active`,
		ev.Date, ev.CategoryID, ev.Cover, ev.Description)
	if err := row.Scan(&ev.ID, &ev.Created, &ev.Active); err != nil {
		return mapEventDBError(err)
	}

	for _, pic := range pics {
		pic.EventID = ev.ID
		row := tx.QueryRowxContext(ctx,
			`INSERT INTO pictures (name, path, event_id)
			 VALUES ($1, $2, $3)
			 RETURNING id, uploaded`,
			pic.Name, pic.Path, pic.EventID)
		if err := row.Scan(&pic.ID, &pic.Uploaded); err != nil {
			return mapEventDBError(err)
		}
	}

	if writeFiles != nil {
		if err := writeFiles(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) AddPictures(ctx context.Context, eventID int64, pics []*picture.Picture, writeFiles func(context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, pic := range pics {
		pic.EventID = eventID
		row := tx.QueryRowxContext(ctx,
			`INSERT INTO pictures (name, path, event_id)
			 VALUES ($1, $2, $3)
			 RETURNING id, uploaded`,
			pic.Name, pic.Path, pic.EventID)
		if err := row.Scan(&pic.ID, &pic.Uploaded); err != nil {
			return mapEventDBError(err)
		}
	}

	if writeFiles != nil {
		if err := writeFiles(ctx); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) UpdateBaseData(ctx context.Context, eventID, newCategoryID int64, newDate time.Time, newPathPrefix string, newCover sql.NullString) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE events SET category_id = $2, date = $3, cover = $4 WHERE id = $1`,
		eventID, newCategoryID, newDate, newCover)
	if err != nil {
		return mapEventDBError(err)
	}

	// Picture paths are "{category}/{date}/{name}", so the new path is the
	// new prefix plus the stored name.
	_, err = tx.ExecContext(ctx,
		`UPDATE pictures SET path = $2 || name WHERE event_id = $1`,
		eventID, newPathPrefix)
	if err != nil {
		return mapEventDBError(err)
	}

	return tx.Commit()
}

func (r *repository) UpdateDescription(ctx context.Context, eventID int64, description sql.NullString) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET description = $2 WHERE id = $1`, eventID, description)
	return mapEventDBError(err)
}

func (r *repository) UpdateCover(ctx context.Context, eventID int64, cover sql.NullString) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET cover = $2 WHERE id = $1`, eventID, cover)
	return err
}

func (r *repository) ToggleActive(ctx context.Context, eventID int64) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active,
		`UPDATE events SET active = NOT active WHERE id = $1 RETURNING active`, eventID)
	return active, err
}

func (r *repository) Delete(ctx context.Context, eventID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// The FK cascades, but the rows are removed explicitly so the commit
	// carries both deletions regardless of schema drift.
	if _, err := tx.ExecContext(ctx, `DELETE FROM pictures WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eventID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) DeletePicturesByPaths(ctx context.Context, paths []string) ([]*picture.Picture, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var pics []*picture.Picture
	err = tx.SelectContext(ctx, &pics,
		`SELECT * FROM pictures WHERE path = ANY($1)`, pq.Array(paths))
	if err != nil {
		return nil, err
	}

	// All-or-nothing: the first unmatched path rejects the call before any
	// row is deleted.
	matched := make(map[string]bool, len(pics))
	for _, pic := range pics {
		matched[pic.Path] = true
	}
	for _, path := range paths {
		if !matched[path] {
			return nil, &PictureNotFoundError{Path: path}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pictures WHERE path = ANY($1)`, pq.Array(paths)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return pics, nil
}
