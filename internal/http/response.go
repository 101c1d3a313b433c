package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/cesargomez89/tubedrums/internal/domain"
)

type errorBody struct {
	Details    any    `json:"details,omitempty"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError renders err in the API error shape. Errors that are not
// *domain.Error become a generic 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		de = domain.ErrInternal("Internal server error").Wrap(err)
	}

	if de.Status >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "code", de.Code, "error", err)
	} else {
		h.Logger.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "code", de.Code, "error", err)
	}

	h.writeJSON(w, de.Status, errorResponse{Error: errorBody{
		Details:    de.Details,
		Message:    de.Message,
		Code:       string(de.Code),
		StatusCode: de.Status,
	}})
}
