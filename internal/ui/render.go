// Package ui writes JSON responses and maps domain errors to HTTP statuses.
package ui

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/vows/internal/moderation"
	"github.com/templui/vows/internal/repository"
	"github.com/templui/vows/internal/service"
	"github.com/templui/vows/internal/storage"
	"github.com/templui/vows/internal/upload"
	"github.com/templui/vows/internal/validation"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	File  string `json:"file,omitempty"`
	// Result is set when an upload batch stopped part-way
	Result any `json:"result,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("render failed", "error", err)
	}
}

// Error writes err with the status StatusFor picks. Unexpected errors are
// logged at error level, user errors at warn.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorWithResult(w, r, err, nil)
}

// ErrorWithResult is Error plus whatever part of a batch made it through.
func ErrorWithResult(w http.ResponseWriter, r *http.Request, err error, result any) {
	status := StatusFor(err)
	body := ErrorBody{Error: message(err, status), Result: result}

	var verr *validation.Error
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	var uerr *upload.Error
	if errors.As(err, &uerr) {
		body.File = uerr.File
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "path", r.URL.Path, "status", status)
	} else {
		slog.Warn("request rejected", "error", err, "path", r.URL.Path, "status", status)
	}

	JSON(w, status, body)
}

func StatusFor(err error) int {
	var verr *validation.Error
	var terr *storage.TransportError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, moderation.ErrNotApproved):
		return http.StatusConflict
	case errors.Is(err, moderation.ErrUnknownAction), errors.Is(err, moderation.ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotAdmin):
		return http.StatusForbidden
	case errors.As(err, &terr):
		return http.StatusBadGateway
	case errors.Is(err, upload.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// message hides internal detail behind a generic text for server errors.
func message(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "Something went wrong. Please try again."
	case http.StatusBadGateway:
		var uerr *upload.Error
		if errors.As(err, &uerr) {
			return "Upload of " + uerr.File + " failed. Please try again."
		}
		return "Upload failed. Please try again."
	case http.StatusServiceUnavailable:
		return "The server is shutting down. Please try again shortly."
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		return service.ErrInvalidCredentials.Error()
	}
	return err.Error()
}

// Redirect uses HX-Redirect for HTMX requests so the browser does a full
// page load, and a 303 otherwise.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
