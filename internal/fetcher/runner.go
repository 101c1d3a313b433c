package fetcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/cesargomez89/tubedrums/internal/constants"
)

// Runner invokes the external fetch tool once for one video URL.
type Runner interface {
	Run(ctx context.Context, videoURL, outputTemplate string, onProgress func(ProgressEvent)) error
}

// YtDlpRunner drives yt-dlp through go-ytdlp.
type YtDlpRunner struct {
	Executable string
	Format     string
}

func NewYtDlpRunner(executable string) *YtDlpRunner {
	if executable == "" {
		executable = constants.DefaultYtDlpPath
	}
	return &YtDlpRunner{Executable: executable, Format: constants.VideoFormat}
}

func (r *YtDlpRunner) Run(ctx context.Context, videoURL, outputTemplate string, onProgress func(ProgressEvent)) error {
	dl := ytdlp.New().
		SetExecutable(r.Executable).
		Format(r.Format).
		Output(outputTemplate).
		NoPlaylist()

	if onProgress != nil {
		dl.ProgressFunc(constants.ProgressInterval, func(update ytdlp.ProgressUpdate) {
			onProgress(eventFromUpdate(update))
		})
	}

	res, err := dl.Run(ctx, videoURL)
	if err != nil {
		if res != nil {
			if line := lastErrorLine(res.Stderr); line != "" {
				return errors.New(line)
			}
		}
		return err
	}
	return nil
}

// eventFromUpdate picks the most precise shape the update carries.
func eventFromUpdate(u ytdlp.ProgressUpdate) ProgressEvent {
	switch {
	case u.TotalBytes > 0:
		return ByteCounts(int64(u.DownloadedBytes), int64(u.TotalBytes))
	case u.FragmentCount > 0:
		return PercentValue(float64(u.FragmentIndex) / float64(u.FragmentCount) * 100)
	default:
		return ProgressEvent{Kind: ProgressUnknown}
	}
}

// lastErrorLine returns the last "ERROR:" line yt-dlp printed, or the last
// non-empty line when none is tagged.
func lastErrorLine(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
		if last == "" {
			last = line
		}
	}
	return last
}

// CheckInstalled verifies the fetch tool can be found. A missing tool is a
// startup configuration error.
func CheckInstalled(executable string) (string, error) {
	path, err := exec.LookPath(executable)
	if err != nil {
		return "", fmt.Errorf("yt-dlp not found (%s): %w", executable, err)
	}
	return path, nil
}
