// Package app holds the download orchestrator: it owns the job table, drives
// one background loop per playlist job and hands finished jobs to the
// archive builder.
package app

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesargomez89/tubedrums/internal/archive"
	"github.com/cesargomez89/tubedrums/internal/catalog"
	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/fetcher"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
)

// VideoFetcher downloads one video into destDir.
type VideoFetcher interface {
	Fetch(ctx context.Context, videoID, title, destDir string, onProgress func(int)) fetcher.Result
}

type Options struct {
	FetchTimeout    time.Duration
	InterVideoDelay time.Duration
	CleanupAfterZip bool
	// Now is used for directory date stamps and timestamps. Defaults to time.Now.
	Now func() time.Time
}

type jobEntry struct {
	mu  sync.RWMutex
	job *domain.DownloadJob
}

func (e *jobEntry) snapshot() *domain.DownloadJob {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.job.Clone()
}

func (e *jobEntry) update(fn func(j *domain.DownloadJob)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.job)
}

func (e *jobEntry) state() domain.JobState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.job.State
}

type DownloadManager struct {
	catalog  catalog.Provider
	fetcher  VideoFetcher
	archiver *archive.Builder
	layout   *storage.Layout
	logger   *logger.Logger
	opts     Options

	mu      sync.RWMutex
	jobs    map[string]*jobEntry
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDownloadManager(provider catalog.Provider, vf VideoFetcher, layout *storage.Layout, log *logger.Logger, opts Options) *DownloadManager {
	if log == nil {
		log = logger.Default()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = constants.DefaultFetchTimeout
	}
	if opts.InterVideoDelay < 0 {
		opts.InterVideoDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DownloadManager{
		catalog:  provider,
		fetcher:  vf,
		archiver: archive.NewBuilder(log),
		layout:   layout,
		logger:   log.WithComponent("downloads"),
		opts:     opts,
		jobs:     make(map[string]*jobEntry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m *DownloadManager) Start() {
	m.logger.Info("Starting download manager", "base_dir", m.layout.BaseDir())
}

// Stop refuses new jobs, interrupts running fetches and waits for every
// driver to return. Interrupted jobs end up failed.
func (m *DownloadManager) Stop() {
	m.logger.Info("Stopping download manager")
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
}

// StartPlaylistDownload lists the playlist, prepares its directory and starts
// a background driver. It returns as soon as the job is registered. If the
// same playlist already has an active job, that job is returned instead.
func (m *DownloadManager) StartPlaylistDownload(ctx context.Context, playlistID string, cred catalog.Credential) (*domain.DownloadJob, error) {
	if existing := m.activeJobFor(playlistID); existing != nil {
		m.logger.Info("Download already running", "download_id", existing.ID, "playlist_id", playlistID)
		return existing, nil
	}

	playlist, err := m.catalog.ListPlaylistItems(ctx, playlistID, cred)
	if err != nil {
		return nil, err
	}
	if len(playlist.Items) == 0 {
		return nil, domain.ErrBadRequest("Playlist is empty - no videos to download").
			WithDetails(map[string]string{"playlistId": playlistID})
	}

	now := m.opts.Now()
	dir := m.layout.PlaylistDir(playlistID, now)
	if err := storage.EnsureDir(dir); err != nil {
		return nil, domain.ErrInternal("Failed to create download directory").Wrap(err)
	}

	job := &domain.DownloadJob{
		ID:            uuid.New().String(),
		PlaylistID:    playlistID,
		PlaylistTitle: playlist.Title,
		State:         domain.JobStateInitializing,
		StoragePath:   dir,
		StartedAt:     now,
		TotalVideos:   len(playlist.Items),
		Videos:        make([]domain.VideoTask, len(playlist.Items)),
	}
	for i, item := range playlist.Items {
		job.Videos[i] = domain.VideoTask{
			VideoID: item.VideoID,
			Title:   item.Title,
			Status:  domain.TaskStatusPending,
		}
	}
	entry := &jobEntry{job: job}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil, domain.ErrServiceUnavailable("Download manager is shutting down")
	}
	if existing := m.activeJobForLocked(playlistID); existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	m.jobs[job.ID] = entry
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("Download started",
		"download_id", job.ID,
		"playlist_id", playlistID,
		"playlist_title", playlist.Title,
		"videos", job.TotalVideos,
		"path", dir,
	)

	snap := entry.snapshot()
	go m.run(entry)
	return snap, nil
}

func (m *DownloadManager) activeJobFor(playlistID string) *domain.DownloadJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeJobForLocked(playlistID)
}

func (m *DownloadManager) activeJobForLocked(playlistID string) *domain.DownloadJob {
	for _, e := range m.jobs {
		snap := e.snapshot()
		if snap.PlaylistID == playlistID && snap.State.IsActive() {
			return snap
		}
	}
	return nil
}

func (m *DownloadManager) entry(id string) (*jobEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound("Download not found").
			WithDetails(map[string]string{"downloadId": id})
	}
	return e, nil
}

func (m *DownloadManager) GetStatus(id string) (*domain.DownloadJob, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	return e.snapshot(), nil
}

// ListAll returns every known job, newest first.
func (m *DownloadManager) ListAll() []*domain.DownloadJob {
	m.mu.RLock()
	jobs := make([]*domain.DownloadJob, 0, len(m.jobs))
	for _, e := range m.jobs {
		jobs = append(jobs, e.snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.After(jobs[j].StartedAt)
	})
	return jobs
}

// Cancel stops a job before its next video. A video already in flight is
// allowed to finish. An empty directory is removed right away.
func (m *DownloadManager) Cancel(id string) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}

	var (
		dir      string
		conflict domain.JobState
	)
	e.update(func(j *domain.DownloadJob) {
		if !j.State.IsActive() {
			conflict = j.State
			return
		}
		now := m.opts.Now()
		j.State = domain.JobStateCancelled
		j.CompletedAt = &now
		j.CurrentVideo = nil
		dir = j.StoragePath
	})
	if conflict != "" {
		return domain.ErrBadRequest("Cannot cancel download with status: " + string(conflict)).
			WithDetails(map[string]string{"downloadId": id, "status": string(conflict)})
	}

	if err := storage.DeleteFolderIfEmpty(dir); err != nil {
		m.logger.Warn("Failed to remove empty download directory", "download_id", id, "path", dir, "error", err)
	}
	m.logger.Info("Download cancelled", "download_id", id)
	return nil
}

// RemoveJob forgets a job. Files on disk are left alone.
func (m *DownloadManager) RemoveJob(id string) (*domain.DownloadJob, error) {
	m.mu.Lock()
	e, ok := m.jobs[id]
	if ok {
		delete(m.jobs, id)
	}
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound("Download not found").
			WithDetails(map[string]string{"downloadId": id})
	}
	m.logger.Info("Download record removed", "download_id", id)
	return e.snapshot(), nil
}

// RemoveJobAndFiles forgets a finished job and deletes its directory.
func (m *DownloadManager) RemoveJobAndFiles(id string) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	if st := e.state(); st.IsActive() {
		return domain.ErrBadRequest("Cannot remove files of an active download, cancel it first").
			WithDetails(map[string]string{"downloadId": id, "status": string(st)})
	}

	job, err := m.RemoveJob(id)
	if err != nil {
		return err
	}
	storage.Cleanup(job.StoragePath, m.logger)
	return nil
}

// BuildArchive opens a ZIP stream over a completed job's files and suggests a
// download filename.
func (m *DownloadManager) BuildArchive(id string) (*archive.Stream, string, error) {
	job, err := m.GetStatus(id)
	if err != nil {
		return nil, "", err
	}
	if job.State != domain.JobStateCompleted {
		return nil, "", domain.NewError(domain.CodeDownloadNotCompleted, http.StatusBadRequest,
			"Download is not completed yet").
			WithDetails(map[string]string{"downloadId": id, "status": string(job.State)})
	}
	if job.ArchivableCount() == 0 {
		return nil, "", domain.NewError(domain.CodeNoFilesToZip, http.StatusBadRequest,
			"No videos were successfully downloaded").
			WithDetails(map[string]string{"downloadId": id})
	}

	stream, err := m.archiver.BuildStream(id, job.StoragePath)
	if err != nil {
		return nil, "", err
	}
	return stream, archive.GenerateZipFilename(job.PlaylistTitle, m.opts.Now()), nil
}

// ArchiveDelivered is called after an archive was streamed in full.
func (m *DownloadManager) ArchiveDelivered(id string) {
	if !m.opts.CleanupAfterZip {
		return
	}
	job, err := m.GetStatus(id)
	if err != nil {
		return
	}
	m.logger.Info("Removing delivered download directory", "download_id", id, "path", job.StoragePath)
	storage.Cleanup(job.StoragePath, m.logger)
}

// Stats reports the video files currently in a job's directory.
func (m *DownloadManager) Stats(id string) (domain.DirStats, error) {
	job, err := m.GetStatus(id)
	if err != nil {
		return domain.DirStats{}, err
	}
	return m.archiver.Stats(job.StoragePath)
}

// SweepFinished drops records of jobs that reached a terminal state more than
// olderThan ago and returns how many were dropped.
func (m *DownloadManager) SweepFinished(olderThan time.Duration) int {
	cutoff := m.opts.Now().Add(-olderThan)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.jobs {
		e.mu.RLock()
		expired := e.job.State.IsTerminal() && e.job.CompletedAt != nil && !e.job.CompletedAt.After(cutoff)
		e.mu.RUnlock()
		if expired {
			delete(m.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("Swept finished downloads", "count", removed, "older_than", olderThan)
	}
	return removed
}
