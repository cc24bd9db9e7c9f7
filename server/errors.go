package server

import (
	"encoding/json"
	"net/http"

	autherr "github.com/jrsteele09/go-transit-auth/internal/errors"
)

const contentTypeJSON = "application/json; charset=utf-8"

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind autherr.Kind) int {
	switch kind {
	case autherr.KindValidation:
		return http.StatusBadRequest
	case autherr.KindNotFound:
		return http.StatusNotFound
	case autherr.KindAuthz:
		return http.StatusForbidden
	case autherr.KindAuthn, autherr.KindExpiry:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError classifies err and writes it as a JSON error body. Server errors
// are logged and their detail is withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := autherr.KindOf(err)
	status := StatusFor(kind)
	description := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		description = autherr.ErrServer.Error()
	}
	writeJSONError(w, autherr.CodeOf(err), description, status)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
