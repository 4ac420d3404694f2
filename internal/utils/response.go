package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"vector/internal/models"
)

// WriteJSON writes the API envelope with status code.
func WriteJSON(w http.ResponseWriter, code int, resp models.Resp) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}

// WriteError maps the service error taxonomy to HTTP status codes.
func WriteError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, models.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, models.ErrInvalidState):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrInvalidInput):
		code = http.StatusBadRequest
	}
	WriteJSON(w, code, models.Resp{OK: false, Info: err.Error()})
}
