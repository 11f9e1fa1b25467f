package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsights/internal/core"
)

// errorResponse is the uniform error body. Kind names the error class,
// detail carries the wrapped cause. Stack traces never leave the
// process.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// writeJSON serializes v with a status code. Encoding failures at this
// point can only be programming errors, so they are logged and the
// connection is left to the client.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "Response encoding failed", "error", err, "path", r.URL.Path)
	}
}

// writeError maps an error kind to its status code and writes the
// uniform error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		status = http.StatusBadRequest
		kind = "invalid_argument"
	case errors.Is(err, core.ErrEmptySample):
		status = http.StatusUnprocessableEntity
		kind = "empty_sample"
	case errors.Is(err, core.ErrNoExpenses):
		status = http.StatusUnprocessableEntity
		kind = "no_expenses"
	case errors.Is(err, core.ErrUnavailable):
		status = http.StatusServiceUnavailable
		kind = "unavailable"
	case errors.Is(err, core.ErrUpstream):
		status = http.StatusBadGateway
		kind = "upstream"
	}

	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path, "status", status)
	}

	s.writeJSON(w, r, status, errorResponse{Error: kind, Detail: err.Error()})
}

// parseLimit reads the limit query parameter, falling back to def when
// absent. Non-numeric values are invalid arguments; range checking is
// left to the engine.
func parseLimit(r *http.Request, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("limit %q is not an integer: %w", v, core.ErrInvalidArgument)
	}
	return limit, nil
}

// requireMethod rejects other verbs with 405 and reports whether the
// handler should proceed.
func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// storeContext bounds a store read so a slow database surfaces as an
// unavailable error instead of a hung request.
func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.storeTimeout)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
