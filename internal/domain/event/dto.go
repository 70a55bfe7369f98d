package event

import (
	"time"

	"github.com/velmuzhov/photosite/internal/domain/picture"
)

// UpdateBaseDataRequest for PUT /events/{category}/{date}
type UpdateBaseDataRequest struct {
	NewCategory string `json:"new_category"`
	NewDate     string `json:"new_date"`
}

// UpdateDescriptionRequest for PATCH /events/{category}/{date}/description
type UpdateDescriptionRequest struct {
	Description string `json:"description" validate:"required"`
}

// DeletePicturesRequest for DELETE /pictures/
type DeletePicturesRequest struct {
	Paths []string `json:"paths" validate:"required,min=1"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          int64     `json:"id"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Cover       *string   `json:"cover"`
	Description *string   `json:"description"`
	Created     time.Time `json:"created"`
	Active      bool      `json:"active"`
}

// PictureResponse represents a picture in API responses
type PictureResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Uploaded time.Time `json:"uploaded"`
}

// EventWithPictures is the single-event read: the event plus all its
// pictures in name order.
type EventWithPictures struct {
	EventResponse
	Pictures []PictureResponse `json:"pictures"`
}

// EventPage is a paginated listing with the total match count
type EventPage struct {
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Events []EventResponse `json:"events"`
}

// UploadResponse lists the filenames actually stored by an upload
type UploadResponse struct {
	Added []string `json:"added"`
}

// EventResponseFromEntity converts an event row to its API shape
func EventResponseFromEntity(e *Event) EventResponse {
	resp := EventResponse{
		ID:       e.ID,
		Category: e.CategoryName,
		Date:     e.DateKey(),
		Created:  e.Created,
		Active:   e.Active,
	}
	if e.Cover.Valid {
		cover := e.Cover.String
		resp.Cover = &cover
	}
	if e.Description.Valid {
		description := e.Description.String
		resp.Description = &description
	}
	return resp
}

// PictureResponseFromEntity converts a picture row to its API shape
func PictureResponseFromEntity(p *picture.Picture) PictureResponse {
	return PictureResponse{
		ID:       p.ID,
		Name:     p.Name,
		Path:     p.Path,
		Uploaded: p.Uploaded,
	}
}
