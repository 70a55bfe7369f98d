package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the body returned for every failed request. Detail carries
// the fixed user-facing message for the failure.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// OK sends a 200 OK response
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// NoContent sends a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends an error response with a detail message
func Error(w http.ResponseWriter, status int, detail string) {
	JSON(w, status, ErrorBody{Detail: detail})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadRequest, detail)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, detail string) {
	Error(w, http.StatusUnauthorized, detail)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(w http.ResponseWriter, detail string) {
	Error(w, http.StatusForbidden, detail)
}

// NotFound sends a 404 Not Found response
func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, detail)
}

// Conflict sends a 409 Conflict response
func Conflict(w http.ResponseWriter, detail string) {
	Error(w, http.StatusConflict, detail)
}

// Gone sends a 410 Gone response
func Gone(w http.ResponseWriter, detail string) {
	Error(w, http.StatusGone, detail)
}

// ValidationError sends a 422 Unprocessable Entity response
func ValidationError(w http.ResponseWriter, detail string) {
	Error(w, http.StatusUnprocessableEntity, detail)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, detail string) {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	Error(w, http.StatusInternalServerError, detail)
}
