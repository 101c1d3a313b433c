package httpapp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/tubedrums/internal/catalog"
	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/http/dto"
)

type ctxKey int

const credentialKey ctxKey = iota

// CredentialFrom returns the credential attached by WithCredential.
func CredentialFrom(ctx context.Context) catalog.Credential {
	cred, _ := ctx.Value(credentialKey).(catalog.Credential)
	return cred
}

// WithCredential attaches the stored OAuth credential to the request and
// rejects it when no catalog source can serve it.
func (h *Handler) WithCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cred catalog.Credential
		if h.Auth != nil {
			cred = h.Auth.Credential(r.Context())
		}
		if h.Catalog != nil && !h.Catalog.CanServe(cred) {
			h.writeError(w, r, domain.NewError(domain.CodeYouTubeNotAuthed, http.StatusServiceUnavailable,
				"YouTube API not authenticated. Run the auth command first."))
			return
		}
		ctx := r.Context()
		if cred != nil {
			ctx = context.WithValue(ctx, credentialKey, cred)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) ValidateDownloadID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "downloadId")
		if errs := dto.ValidateDownloadID(id); len(errs) > 0 {
			h.writeError(w, r, domain.ErrValidation("Invalid download ID").WithDetails(errs))
			return
		}
		next.ServeHTTP(w, r)
	})
}
