// Package httptransport is the thin HTTP layer. Handlers decode input,
// delegate to the services, and encode the response envelope; business rules
// stay out of this package.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "docgate/pkg/domainerrors"
	"docgate/pkg/requestcontext"
)

// envelope is the response shape every endpoint uses:
// {success, message?, data?|user?|document?|token?}.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondOK(w http.ResponseWriter, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	payload["success"] = true
	respond(w, http.StatusOK, payload)
}

func respondData(w http.ResponseWriter, data any) {
	respondOK(w, envelope{"data": data})
}

// writeError translates a domain error to its status and caller-facing
// message. Unclassified errors surface as a generic 500; the cause only
// reaches the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
	respond(w, status, envelope{
		"success": false,
		"message": dErrors.MessageOf(err),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid request body")
	}
	return nil
}
