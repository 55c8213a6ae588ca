package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with full technical detail and the request ID, then
// mapped through core.MapError to a user-facing message and code. API
// clients get JSON; browsers get the upload page with alerts above the form.
// A rejected upload can fail several checks at once, and each one is
// reported.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/mxgroup/internal/core"
	"github.com/JonMunkholm/mxgroup/internal/logging"
	"github.com/JonMunkholm/mxgroup/internal/web/templates"
)

var (
	errNoFile      = errors.New("no file provided")
	errInvalidForm = errors.New("invalid form")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error    string    `json:"error"`
	Message  string    `json:"message"`
	Action   string    `json:"action,omitempty"`
	Code     string    `json:"code"`
	Problems []Problem `json:"problems,omitempty"`
}

// Problem is one failed check of a rejected upload.
type Problem struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	var (
		verr *core.ValidationError
		lerr *core.DocumentLoadError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, errNoFile), errors.Is(err, errInvalidForm):
		return http.StatusBadRequest
	case errors.As(err, &lerr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// userMessages maps err to one message, or one per reason for a
// validation error.
func userMessages(err error) []core.UserMessage {
	var verr *core.ValidationError
	if errors.As(err, &verr) && len(verr.Reasons) > 0 {
		return core.MapReasons(verr)
	}
	return []core.UserMessage{core.MapError(err)}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and answers in JSON or HTML
// depending on the request.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msgs := userMessages(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msgs[0].Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, r, msgs, statusCode)
		return
	}
	s.respondErrorHTML(w, r, msgs, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msgs []core.UserMessage, statusCode int) {
	first := msgs[0]
	resp := ErrorResponse{
		Error:   first.Message,
		Message: first.Message,
		Action:  first.Action,
		Code:    first.Code,
	}
	if len(msgs) > 1 {
		for _, m := range msgs {
			resp.Problems = append(resp.Problems, Problem{Message: m.Message, Action: m.Action, Code: m.Code})
		}
	}
	writeJSON(w, r, statusCode, resp)
}

// respondErrorHTML renders the upload page with an alert per message.
func (s *Server) respondErrorHTML(w http.ResponseWriter, r *http.Request, msgs []core.UserMessage, statusCode int) {
	params := s.pageParams()
	for _, m := range msgs {
		params.Alerts = append(params.Alerts, templates.Alert{Message: m.Message, Action: m.Action, Code: m.Code})
	}
	s.renderPage(w, r, statusCode, params)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
