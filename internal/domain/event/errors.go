package event

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrInvalidDateFormat  = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidFilenames   = errors.New("invalid file names or extensions")
	ErrDuplicateFilenames = errors.New("duplicate file names in upload")
	ErrDuplicateEvent     = errors.New("event with this date already exists in this category")
	ErrEventNotFound      = errors.New("event not found")
	ErrEventInactive      = errors.New("event is not active")
	ErrEmptyDescription   = errors.New("description must not be empty")
	ErrNoFiles            = errors.New("no files provided")
)

// PictureNotFoundError reports the first requested path with no matching row
// during bulk picture deletion. The whole call is rejected before any row
// is deleted.
type PictureNotFoundError struct {
	Path string
}

func (e *PictureNotFoundError) Error() string {
	return "no picture found for path: " + e.Path
}

// mapEventDBError translates constraint violations on the events and
// pictures tables into domain errors, so races lost to the database
// surface as a Conflict rather than a 500.
func mapEventDBError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case "events_date_category_id_key":
			return ErrDuplicateEvent
		case "pictures_path_key", "pictures_name_event_id_key":
			return ErrDuplicateFilenames
		}
	case "23514": // check_violation
		if pqErr.Constraint == "events_description_check" {
			return ErrEmptyDescription
		}
	case "23503": // foreign_key_violation
		if pqErr.Constraint == "events_category_id_fkey" {
			return ErrInvalidCategory
		}
	}

	return err
}
