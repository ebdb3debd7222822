package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starford/chroniclelens/internal/checksum"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeJSONTagged writes v with an ETag and answers 304 when the client
// already holds the same representation.
func writeJSONTagged(w http.ResponseWriter, r *http.Request, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	etag := checksum.ETag(buf.Bytes())
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

type errResponse struct {
	Error  string            `json:"error" validate:"required"`
	Fields map[string]string `json:"fields,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
