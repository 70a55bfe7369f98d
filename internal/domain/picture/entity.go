package picture

import "time"

// Picture is one uploaded photograph belonging to exactly one event.
// Name is the original upload filename, unique within the event; Path is
// the relative location "{category}/{date}/{name}" shared by the originals
// and thumbnails trees and unique across the whole table.
type Picture struct {
	ID       int64     `db:"id" json:"id"`
	Name     string    `db:"name" json:"name"`
	Path     string    `db:"path" json:"path"`
	EventID  int64     `db:"event_id" json:"event_id"`
	Uploaded time.Time `db:"uploaded" json:"uploaded"`
}
