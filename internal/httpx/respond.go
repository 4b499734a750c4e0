package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"

	"github.com/ariefcatur/booknest/internal/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return library.Invalid("Invalid JSON body")
}

// writeError maps the library error taxonomy onto status codes. failMsg is
// the error text for anything unexpected.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, failMsg string, err error) {
	body := errorBody{Path: r.URL.Path, Timestamp: time.Now().UTC().Format(time.RFC3339Nano)}
	code := http.StatusInternalServerError

	var (
		verr *library.ValidationError
		nerr *library.NotFoundError
		cerr *library.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		code, body.Error, body.Details = http.StatusBadRequest, "Validation failed", verr.Details
	case errors.As(err, &nerr):
		code, body.Error = http.StatusNotFound, nerr.Error()
	case errors.As(err, &cerr):
		code, body.Error, body.Details = http.StatusConflict, "Conflict", cerr.Details
	default:
		body.Error, body.Details = failMsg, err.Error()
	}
	if code >= http.StatusInternalServerError {
		log.Error(failMsg, "err", err, "path", r.URL.Path, "req_id", middleware.GetReqID(r.Context()))
	}
	writeJSON(w, code, body)
}
