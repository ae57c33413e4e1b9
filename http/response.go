package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	OK     bool     `json:"ok"`
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// writeJSON encodes into a buffer first so a failed encode does not leave a
// half-written 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		zap.L().Error("error encoding response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Warn("error writing response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, fields ...string) {
	writeJSON(w, status, errorResponse{OK: false, Error: msg, Fields: fields})
}

// decodeJSON reads a JSON body into dst. It writes the error response itself
// and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		zap.L().Debug("error decoding request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
