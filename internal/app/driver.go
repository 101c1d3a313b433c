package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/fetcher"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
)

const errManagerStopped = "download manager stopped"

// run is the per-job driver. Videos are attempted strictly in playlist order,
// one at a time.
func (m *DownloadManager) run(e *jobEntry) {
	defer m.wg.Done()

	job := e.snapshot()
	log := m.logger.WithJob(job.ID, job.PlaylistID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Panic in download driver", "panic", r)
			m.fail(e, fmt.Sprintf("Panic: %v", r))
		}
	}()

	began := false
	e.update(func(j *domain.DownloadJob) {
		if j.State == domain.JobStateInitializing {
			j.State = domain.JobStateDownloading
			began = true
		}
	})
	if !began {
		log.Info("Download cancelled before start")
		m.afterCancel(e, log)
		return
	}

	for i := 0; i < job.TotalVideos; i++ {
		if e.state() == domain.JobStateCancelled {
			log.Info("Download cancelled", "index", i)
			m.afterCancel(e, log)
			return
		}
		if m.ctx.Err() != nil {
			log.Warn("Download interrupted by shutdown", "index", i)
			m.interrupted(e, log)
			return
		}

		attempted := m.processVideo(e, i, log)
		if attempted && i < job.TotalVideos-1 {
			m.pause()
		}
	}

	// all videos attempted
	if m.complete(e) {
		done := e.snapshot()
		log.Info("Download completed",
			"completed", done.CompletedCount,
			"failed", done.FailedCount,
			"skipped", done.SkippedCount,
			"duration", time.Since(done.StartedAt),
		)
		return
	}
	// cancelled while the last video was in flight
	m.afterCancel(e, log)
}

// processVideo handles task i and reports whether the fetch tool was invoked.
func (m *DownloadManager) processVideo(e *jobEntry, i int, log *logger.Logger) bool {
	var (
		task  domain.VideoTask
		dir   string
		total int
	)
	e.update(func(j *domain.DownloadJob) {
		task = j.Videos[i]
		dir = j.StoragePath
		total = j.TotalVideos
		j.CurrentIndex = i
	})
	vlog := log.WithVideo(task.VideoID, task.Title)

	if path, err := storage.FindDownloaded(dir, task.VideoID); err == nil && path != "" && storage.IsVideoFile(path) {
		size, _ := storage.FileSize(path)
		now := m.opts.Now()
		e.update(func(j *domain.DownloadJob) {
			t := &j.Videos[i]
			t.Status = domain.TaskStatusSkipped
			t.Progress = 100
			t.FilePath = path
			t.FileSize = size
			t.StartedAt = &now
			t.CompletedAt = &now
			j.SkippedCount++
			setCurrent(j, i)
		})
		vlog.Info("Video already downloaded, skipping", "file_path", path)
		return false
	}

	started := m.opts.Now()
	e.update(func(j *domain.DownloadJob) {
		t := &j.Videos[i]
		t.Status = domain.TaskStatusDownloading
		t.StartedAt = &started
		setCurrent(j, i)
	})
	vlog.Info("Downloading video", "index", i+1, "total", total)

	ctx, cancel := context.WithTimeout(m.ctx, m.opts.FetchTimeout)
	res := m.fetcher.Fetch(ctx, task.VideoID, task.Title, dir, func(pct int) {
		pct = fetcher.Clamp(pct)
		e.update(func(j *domain.DownloadJob) {
			t := &j.Videos[i]
			if t.Status != domain.TaskStatusDownloading || pct <= t.Progress {
				return
			}
			t.Progress = pct
			setCurrent(j, i)
		})
	})
	cancel()

	finished := m.opts.Now()
	e.update(func(j *domain.DownloadJob) {
		t := &j.Videos[i]
		t.CompletedAt = &finished
		if res.Success {
			t.Status = domain.TaskStatusCompleted
			t.Progress = 100
			t.FilePath = res.FilePath
			t.FileSize = res.FileSize
			j.CompletedCount++
		} else {
			t.Status = domain.TaskStatusFailed
			t.Error = res.Error
			j.FailedCount++
		}
		setCurrent(j, i)
	})

	if res.Success {
		vlog.Info("Video downloaded", "file_path", res.FilePath, "size", res.FileSize, "duration", res.Duration)
	} else {
		vlog.Warn("Video failed", "error", res.Error, "duration", res.Duration)
	}
	return true
}

func setCurrent(j *domain.DownloadJob, i int) {
	cv := j.Videos[i]
	j.CurrentVideo = &cv
}

// pause waits the inter-video delay or until shutdown.
func (m *DownloadManager) pause() {
	if m.opts.InterVideoDelay <= 0 {
		return
	}
	timer := time.NewTimer(m.opts.InterVideoDelay)
	defer timer.Stop()
	select {
	case <-m.ctx.Done():
	case <-timer.C:
	}
}

func (m *DownloadManager) complete(e *jobEntry) bool {
	ok := false
	e.update(func(j *domain.DownloadJob) {
		if j.State != domain.JobStateDownloading {
			return
		}
		now := m.opts.Now()
		j.State = domain.JobStateCompleted
		j.CompletedAt = &now
		j.CurrentVideo = nil
		ok = true
	})
	return ok
}

func (m *DownloadManager) fail(e *jobEntry, msg string) {
	e.update(func(j *domain.DownloadJob) {
		if j.State.IsTerminal() {
			return
		}
		now := m.opts.Now()
		j.State = domain.JobStateFailed
		j.Error = msg
		j.CompletedAt = &now
		j.CurrentVideo = nil
	})
}

// interrupted ends a job cut short by shutdown. A cancel that won the race
// keeps its state and gets the usual cleanup.
func (m *DownloadManager) interrupted(e *jobEntry, log *logger.Logger) {
	m.fail(e, errManagerStopped)
	if e.state() == domain.JobStateCancelled {
		m.afterCancel(e, log)
	}
}

// afterCancel runs once the in-flight attempt of a cancelled job returned.
// A directory holding no video file (only partial leftovers, if anything) is
// removed; anything that finished is kept.
func (m *DownloadManager) afterCancel(e *jobEntry, log *logger.Logger) {
	job := e.snapshot()
	files, err := storage.VideoFiles(job.StoragePath)
	if err != nil || len(files) > 0 {
		return
	}
	log.Info("Removing download directory without videos", "path", job.StoragePath)
	storage.Cleanup(job.StoragePath, log)
}
