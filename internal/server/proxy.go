package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxProxyBody caps request bodies forwarded to the scoring backend.
const maxProxyBody = 1 << 20

func (s *Server) handleProxyHealth(w http.ResponseWriter, r *http.Request) {
	s.proxy(w, r, "/health", false)
}

func (s *Server) handleProxyStartSession(w http.ResponseWriter, r *http.Request) {
	s.proxy(w, r, "/start_session", true)
}

func (s *Server) handleProxyScorecard(w http.ResponseWriter, r *http.Request) {
	s.proxy(w, r, "/scorecard", true)
}

// proxy forwards the request to the scoring backend and mirrors its status
// and JSON body. Any failure, including a non-JSON request or response
// body, becomes 500 {"success": false, "error": ...}.
func (s *Server) proxy(w http.ResponseWriter, r *http.Request, path string, withBody bool) {
	var body io.Reader
	if withBody {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
		if err != nil {
			s.proxyError(w, path, err)
			return
		}
		if !json.Valid(data) {
			s.proxyError(w, path, errors.New("request body is not valid JSON"))
			return
		}
		body = bytes.NewReader(data)
	}

	status, data, err := s.backend.Forward(r.Context(), r.Method, path, body)
	if err != nil {
		s.proxyError(w, path, err)
		return
	}
	if !json.Valid(data) {
		s.proxyError(w, path, errors.New("backend response is not valid JSON"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) proxyError(w http.ResponseWriter, path string, err error) {
	s.log.Warn("scoring proxy failed", "path", path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
}
