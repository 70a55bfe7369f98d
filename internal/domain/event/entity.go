package event

import (
	"database/sql"
	"time"
)

// Trees under the media root. Originals and thumbnails mirror each other;
// covers live in their own tree. Every tree nests {category}/{date}/{file}.
const (
	ImagesTree     = "images"
	ThumbnailsTree = "thumbnails"
	CoversTree     = "event_covers"
)

// DateLayout is the only accepted calendar date form
const DateLayout = "2006-01-02"

// Event represents one photo shoot: a (category, date) pair owning pictures.
// Active hides the event from public reads without touching rows or files.
type Event struct {
	ID           int64          `db:"id"`
	Date         time.Time      `db:"date"`
	CategoryID   int64          `db:"category_id"`
	CategoryName string         `db:"category_name"`
	Cover        sql.NullString `db:"cover"`
	Description  sql.NullString `db:"description"`
	Created      time.Time      `db:"created"`
	Active       bool           `db:"active"`
}

// DateKey formats the event date for paths and responses
func (e *Event) DateKey() string {
	return e.Date.Format(DateLayout)
}

// Dir is the event's directory "{category}/{date}" relative to each tree
func (e *Event) Dir() string {
	return e.CategoryName + "/" + e.DateKey()
}

// RelDir builds the "{category}/{date}" directory for arbitrary coordinates
func RelDir(categoryName string, date time.Time) string {
	return categoryName + "/" + date.Format(DateLayout)
}
