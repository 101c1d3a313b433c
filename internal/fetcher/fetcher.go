// Package fetcher downloads single videos through an external tool and
// reports normalized progress and classified failures.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cesargomez89/tubedrums/internal/constants"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
)

// Result is the outcome of one fetch attempt.
type Result struct {
	FilePath string
	Error    string
	FileSize int64
	Duration time.Duration
	Success  bool
}

type Fetcher struct {
	runner Runner
	logger *logger.Logger
}

func New(runner Runner, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Default()
	}
	return &Fetcher{runner: runner, logger: log.WithComponent("fetcher")}
}

// Fetch downloads videoID into destDir with the fixed quality policy. Progress
// is forwarded to onProgress only for parseable reports. Failures never
// return an error; they come back in Result.Error.
func (f *Fetcher) Fetch(ctx context.Context, videoID, title, destDir string, onProgress func(int)) Result {
	start := time.Now()
	log := f.logger.WithVideo(videoID, title)

	fail := func(msg string) Result {
		log.Warn("Video download failed", "reason", msg)
		return Result{Error: msg, Duration: time.Since(start)}
	}

	videoURL := constants.VideoURLPrefix + videoID
	output := filepath.Join(destDir, constants.OutputTemplate)

	err := f.runner.Run(ctx, videoURL, output, func(ev ProgressEvent) {
		if onProgress == nil {
			return
		}
		if pct, ok := Normalize(ev); ok {
			onProgress(pct)
		}
	})
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fail("Download timed out")
		case errors.Is(ctx.Err(), context.Canceled):
			return fail("Download interrupted")
		}
		return fail(Classify(err.Error()))
	}

	path, err := storage.FindDownloaded(destDir, videoID)
	if err != nil {
		return fail(fmt.Sprintf("Download failed: %v", err))
	}
	if path == "" {
		return fail(fmt.Sprintf("Downloaded file not found for video %s", videoID))
	}

	size, err := storage.FileSize(path)
	if err != nil {
		return fail(fmt.Sprintf("Download failed: %v", err))
	}

	res := Result{
		Success:  true,
		FilePath: path,
		FileSize: size,
		Duration: time.Since(start),
	}
	log.Info("Video downloaded", "path", path, "size", size, "duration", res.Duration)
	return res
}
