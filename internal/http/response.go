package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"kharcha/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// respondError maps domain errors onto HTTP statuses: a body that does not
// parse is 400, invalid input is 422, a stale id is 404, everything else is
// a 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing   *core.MissingFieldError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		writeError(w, http.StatusBadRequest, "malformed request body")
	case errors.As(err, &missing),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidRate),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrEmptyItem),
		errors.Is(err, core.ErrEmptyCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
