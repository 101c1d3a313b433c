package httpapp

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/tubedrums/internal/archive"
	"github.com/cesargomez89/tubedrums/internal/catalog"
	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/logger"
)

type DownloadService interface {
	StartPlaylistDownload(ctx context.Context, playlistID string, cred catalog.Credential) (*domain.DownloadJob, error)
	GetStatus(id string) (*domain.DownloadJob, error)
	ListAll() []*domain.DownloadJob
	Cancel(id string) error
	RemoveJob(id string) (*domain.DownloadJob, error)
	RemoveJobAndFiles(id string) error
	BuildArchive(id string) (*archive.Stream, string, error)
	ArchiveDelivered(id string)
	Stats(id string) (domain.DirStats, error)
}

// CredentialSource yields the stored OAuth credential, or nil.
type CredentialSource interface {
	Credential(ctx context.Context) catalog.Credential
}

type CatalogAvailability interface {
	CanServe(cred catalog.Credential) bool
}

type Handler struct {
	Downloads DownloadService
	Catalog   CatalogAvailability
	// Auth is nil when no OAuth client is configured.
	Auth   CredentialSource
	Logger *logger.Logger
}

func NewHandler(ds DownloadService, cat CatalogAvailability, auth CredentialSource, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		Downloads: ds,
		Catalog:   cat,
		Auth:      auth,
		Logger:    log.WithComponent("http"),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api/downloads", func(r chi.Router) {
		r.Get("/", h.ListDownloads)
		r.With(h.WithCredential).Post("/start", h.StartDownload)

		r.Route("/{downloadId}", func(r chi.Router) {
			r.Use(h.ValidateDownloadID)
			r.Get("/status", h.DownloadStatus)
			r.Get("/stats", h.DownloadStats)
			r.Get("/zip", h.DownloadZip)
			r.Delete("/", h.CancelDownload)
			r.Delete("/record", h.RemoveDownload)
		})
	})
}
