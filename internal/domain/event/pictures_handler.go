package event

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/velmuzhov/photosite/internal/pkg/response"
	"github.com/velmuzhov/photosite/internal/pkg/validator"
)

// ListPictures handles GET /pictures/
func (h *Handler) ListPictures(w http.ResponseWriter, r *http.Request) {
	pics, err := h.service.ListAllPictures(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.OK(w, pics)
}

// UploadPictures handles POST /pictures/: the multipart form carries the
// event coordinates (category, date), an optional event_description, an
// optional event_cover, and the picture files. The (category, date) pair
// must be free; appending to an existing event goes through
// PATCH /events/{category}/{date}/pictures.
func (h *Handler) UploadPictures(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	categoryName := r.FormValue("category")
	date := r.FormValue("date")
	description := r.FormValue("event_description")

	files, opened, err := uploadFiles(r.MultipartForm.File["files"])
	if err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}
	defer closeAll(opened)

	var cover *UploadFile
	if coverFile, coverHeader, err := r.FormFile("event_cover"); err == nil {
		defer coverFile.Close()
		cover = &UploadFile{Name: coverHeader.Filename, Reader: coverFile}
	}

	resp, err := h.service.Upload(r.Context(), categoryName, date, description, files, cover)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, resp)
}

// DeletePictures handles DELETE /pictures/
func (h *Handler) DeletePictures(w http.ResponseWriter, r *http.Request) {
	var req DeletePicturesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, validator.Message(errs))
		return
	}

	if err := h.service.DeletePictures(r.Context(), req.Paths); err != nil {
		var pictureNotFound *PictureNotFoundError
		if errors.As(err, &pictureNotFound) {
			respondError(w, err)
			return
		}
		// Rows are gone but a file would not unlink; the operator needs
		// the underlying error to reconcile by hand.
		response.InternalError(w, err.Error())
		return
	}

	response.NoContent(w)
}
