package httpapp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/http/dto"
)

const zipChunkSize = 32 * 1024

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	active := 0
	for _, j := range h.Downloads.ListAll() {
		if j.State.IsActive() {
			active++
		}
	}
	authenticated := false
	if h.Auth != nil {
		authenticated = h.Auth.Credential(r.Context()) != nil
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"authenticated":   authenticated,
		"activeDownloads": active,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) StartDownload(w http.ResponseWriter, r *http.Request) {
	var req dto.StartDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("Invalid request body").Wrap(err))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		h.writeError(w, r, domain.ErrValidation("Validation failed").WithDetails(errs))
		return
	}

	job, err := h.Downloads.StartPlaylistDownload(r.Context(), req.PlaylistID, CredentialFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"data": dto.StartDownloadResponse{
			DownloadID: job.ID,
			Message:    "Download started successfully",
			StatusURL:  fmt.Sprintf("/api/downloads/%s/status", job.ID),
		},
		"status": dto.NewDownloadResponse(job),
	})
}

func (h *Handler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	jobs := h.Downloads.ListAll()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    dto.NewDownloadResponses(jobs),
		"count":   len(jobs),
	})
}

func (h *Handler) DownloadStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.Downloads.GetStatus(chi.URLParam(r, "downloadId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    dto.NewDownloadResponse(job),
	})
}

func (h *Handler) DownloadStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadId")
	stats, err := h.Downloads.Stats(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    dto.NewStatsResponse(id, stats),
	})
}

func (h *Handler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	if err := h.Downloads.Cancel(chi.URLParam(r, "downloadId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Download cancelled successfully",
	})
}

// RemoveDownload forgets a download record. With ?cleanup=true the files of a
// finished download are deleted too.
func (h *Handler) RemoveDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadId")

	var err error
	if r.URL.Query().Get("cleanup") == "true" {
		err = h.Downloads.RemoveJobAndFiles(id)
	} else {
		_, err = h.Downloads.RemoveJob(id)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Download record removed",
	})
}

// DownloadZip streams the archive. The first chunk is read before any header
// goes out so an early framing error can still become a JSON error; later
// errors abort the connection.
func (h *Handler) DownloadZip(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "downloadId")

	stream, filename, err := h.Downloads.BuildArchive(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer stream.Close()

	buf := make([]byte, zipChunkSize)
	n, readErr := stream.Read(buf)
	if readErr != nil && readErr != io.EOF {
		h.writeError(w, r, readErr)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)

	h.Logger.Info("Streaming archive", "download_id", id, "files", len(stream.Files), "filename", filename)

	if _, err := w.Write(buf[:n]); err != nil {
		h.abortZip(id, err)
	}
	if readErr == nil {
		if _, err := io.CopyBuffer(w, stream, buf); err != nil {
			h.abortZip(id, err)
		}
	}
	if err := stream.Wait(); err != nil {
		h.abortZip(id, err)
	}

	h.Downloads.ArchiveDelivered(id)
}

func (h *Handler) abortZip(id string, err error) {
	h.Logger.Error("Archive stream aborted", "download_id", id, "error", err)
	panic(http.ErrAbortHandler)
}
