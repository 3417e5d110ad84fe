package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/go-grc/internal/api/dto"
	"github.com/hugh/go-grc/internal/grc"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// validator is implemented by every request DTO.
type validator interface {
	Validate() map[string]string
}

// sanitizer is implemented by requests carrying free text.
type sanitizer interface {
	Sanitize()
}

// decodeAndValidate reads a JSON body into req and writes a 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req validator) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return false
	}
	if s, ok := req.(sanitizer); ok {
		s.Sanitize()
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return false
	}
	return true
}

// urlUUID parses a UUID path parameter and writes a 400 on failure.
func urlUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid " + label + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses s, treating an empty string as uuid.Nil.
func optionalUUID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, msg := serviceErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// serviceErrorStatus maps a service error to its HTTP status and the message
// shown to the client. Unrecognised errors are hidden behind a 500.
func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, grc.ErrNotAuthenticated):
		return http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, grc.ErrNotAuthorized):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, grc.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, grc.ErrInvalidState):
		return http.StatusConflict, err.Error()
	case errors.Is(err, grc.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func listResponse[T any](items []T) dto.ListResponse {
	if items == nil {
		items = []T{}
	}
	return dto.ListResponse{Data: items, Total: len(items)}
}
