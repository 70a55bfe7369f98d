package event

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/velmuzhov/photosite/internal/pkg/response"
	"github.com/velmuzhov/photosite/internal/pkg/validator"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

// Handler handles event HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// respondError translates engine errors into their fixed response bodies
func respondError(w http.ResponseWriter, err error) {
	var pictureNotFound *PictureNotFoundError

	switch {
	case errors.Is(err, ErrInvalidDateFormat):
		response.BadRequest(w, "Date must be in YYYY-MM-DD format")
	case errors.Is(err, ErrInvalidCategory):
		response.BadRequest(w, "Invalid category")
	case errors.Is(err, ErrInvalidFilenames):
		response.BadRequest(w, "Invalid file names or extensions")
	case errors.Is(err, ErrNoFiles):
		response.BadRequest(w, "No files provided")
	case errors.Is(err, ErrEmptyDescription):
		response.BadRequest(w, "Description must not be empty")
	case errors.Is(err, ErrDuplicateFilenames):
		response.Conflict(w, "Duplicate file names in upload")
	case errors.Is(err, ErrDuplicateEvent):
		response.Conflict(w, "Event with this date already exists in this category")
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(w, "Event not found")
	case errors.Is(err, ErrEventInactive):
		response.Gone(w, "Event is not active")
	case errors.As(err, &pictureNotFound):
		response.BadRequest(w, "No picture found for path: "+pictureNotFound.Path)
	default:
		log.Error().Err(err).Msg("Event operation failed")
		response.InternalError(w, "")
	}
}

func pathCoordinates(r *http.Request) (string, string) {
	return chi.URLParam(r, "category"), chi.URLParam(r, "date")
}

// uploadFiles adapts multipart file headers to the engine's upload form
func uploadFiles(headers []*multipart.FileHeader) ([]UploadFile, []multipart.File, error) {
	files := make([]UploadFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			for _, o := range opened {
				o.Close()
			}
			return nil, nil, err
		}
		opened = append(opened, f)
		files = append(files, UploadFile{Name: header.Filename, Reader: f})
	}
	return files, opened, nil
}

func closeAll(opened []multipart.File) {
	for _, f := range opened {
		f.Close()
	}
}

// GetPublic handles GET /events/{category}/{date}
func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	ev, err := h.service.GetWithPictures(r.Context(), categoryName, date, true)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// ListPublic handles GET /events/{category}
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	categoryName := chi.URLParam(r, "category")
	page, limit := pageParams(r)

	events, err := h.service.ListByCategory(r.Context(), categoryName, page, limit, true)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(events.Total))
	response.OK(w, events)
}

// ListRecent handles GET /events/ sorted by creation time
func (h *Handler) ListRecent(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	events, err := h.service.ListByCreated(r.Context(), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(events.Total))
	response.OK(w, events)
}

// ListInactive handles GET /events/inactive
func (h *Handler) ListInactive(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListInactive(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, events)
}

// UpdateBaseData handles PUT /events/{category}/{date}
func (h *Handler) UpdateBaseData(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	var req UpdateBaseDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	ev, err := h.service.UpdateBaseData(r.Context(), categoryName, date, req)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// UpdateDescription handles PATCH /events/{category}/{date}/description
func (h *Handler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	var req UpdateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, validator.Message(errs))
		return
	}

	ev, err := h.service.UpdateDescription(r.Context(), categoryName, date, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// DeleteDescription handles DELETE /events/{category}/{date}/description
func (h *Handler) DeleteDescription(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	ev, err := h.service.DeleteDescription(r.Context(), categoryName, date)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// UpdateCover handles PATCH /events/{category}/{date}/cover
func (h *Handler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("event_cover")
	if err != nil {
		response.BadRequest(w, "No files provided")
		return
	}
	defer file.Close()

	ev, err := h.service.UpdateCover(r.Context(), categoryName, date, UploadFile{Name: header.Filename, Reader: file})
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// DeleteCover handles DELETE /events/{category}/{date}/cover
func (h *Handler) DeleteCover(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	ev, err := h.service.DeleteCover(r.Context(), categoryName, date)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// ToggleActive handles PATCH /events/{category}/{date}/active
func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	ev, err := h.service.ToggleActive(r.Context(), categoryName, date)
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, ev)
}

// AddPictures handles PATCH /events/{category}/{date}/pictures
func (h *Handler) AddPictures(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	files, opened, err := uploadFiles(r.MultipartForm.File["files"])
	if err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer closeAll(opened)

	resp, err := h.service.AddToEvent(r.Context(), categoryName, date, files)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, resp)
}

// Delete handles DELETE /events/{category}/{date}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	categoryName, date := pathCoordinates(r)

	if err := h.service.Delete(r.Context(), categoryName, date); err != nil {
		respondError(w, err)
		return
	}

	response.NoContent(w)
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return page, limit
}
