package fetcher

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cesargomez89/tubedrums/internal/logger"
)

// fakeRunner writes a file named after the output template and replays events.
type fakeRunner struct {
	err       error
	events    []ProgressEvent
	fileName  string
	gotURL    string
	gotOutput string
	block     bool
}

func (r *fakeRunner) Run(ctx context.Context, videoURL, outputTemplate string, onProgress func(ProgressEvent)) error {
	r.gotURL = videoURL
	r.gotOutput = outputTemplate
	for _, ev := range r.events {
		onProgress(ev)
	}
	if r.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if r.err != nil {
		return r.err
	}
	if r.fileName != "" {
		return os.WriteFile(filepath.Join(filepath.Dir(outputTemplate), r.fileName), []byte("video"), 0644)
	}
	return nil
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		ev     ProgressEvent
		want   int
		wantOK bool
	}{
		{"percent text", PercentText("[download]  42.7% of 10MiB"), 42, true},
		{"percent text over", PercentText("150%"), 100, true},
		{"percent text negative", PercentText("-3%"), 0, true},
		{"percent text garbage", PercentText("downloading"), 0, false},
		{"percent value", PercentValue(99.9), 99, true},
		{"percent value over", PercentValue(250), 100, true},
		{"percent value under", PercentValue(-10), 0, true},
		{"percent text huge", PercentText("100000000000000000000%"), 100, true},
		{"percent value huge", PercentValue(1e20), 100, true},
		{"percent value +inf", PercentValue(math.Inf(1)), 100, true},
		{"percent value -inf", PercentValue(math.Inf(-1)), 0, true},
		{"percent value nan", PercentValue(math.NaN()), 0, false},
		{"bytes", ByteCounts(25, 100), 25, true},
		{"bytes over total", ByteCounts(300, 100), 100, true},
		{"bytes unknown total", ByteCounts(300, 0), 0, false},
		{"unknown", ProgressEvent{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.ev)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Normalize() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ERROR: [youtube] abc: Video unavailable", "Video is unavailable, private, or deleted"},
		{"Private video. Sign in if you've been granted access", "Video is unavailable, private, or deleted"},
		{"This video contains content from X, who has blocked it on copyright grounds", "Video is blocked or restricted"},
		{"This video is not available in your country", "Video is blocked or restricted"},
		{"Connection reset by peer", "Network error during download"},
		{"Read timed out", "Network error during download"},
		{"Sign in to confirm your age", "Video is age-restricted"},
		{"Requested format is not available", "Download failed: Requested format is not available"},
		{"", "Unknown download error"},
	}

	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFetch_Success(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{
		fileName: "vid123_My Title.mp4",
		events:   []ProgressEvent{PercentText("10%"), {Kind: ProgressUnknown}, ByteCounts(50, 100), PercentValue(120)},
	}
	f := New(runner, logger.Discard())

	var got []int
	res := f.Fetch(context.Background(), "vid123", "My Title", dir, func(p int) { got = append(got, p) })

	if !res.Success {
		t.Fatalf("Expected success, got error %q", res.Error)
	}
	if filepath.Base(res.FilePath) != "vid123_My Title.mp4" {
		t.Errorf("FilePath = %q", res.FilePath)
	}
	if res.FileSize != 5 {
		t.Errorf("FileSize = %d, want 5", res.FileSize)
	}
	if len(got) != 3 || got[0] != 10 || got[1] != 50 || got[2] != 100 {
		t.Errorf("Progress callbacks = %v, want [10 50 100]", got)
	}
	if runner.gotURL != "https://www.youtube.com/watch?v=vid123" {
		t.Errorf("URL = %q", runner.gotURL)
	}
	if !strings.HasSuffix(runner.gotOutput, "%(id)s_%(title)s.%(ext)s") || !strings.HasPrefix(runner.gotOutput, dir) {
		t.Errorf("Output template = %q", runner.gotOutput)
	}
}

func TestFetch_ToolFailureIsClassified(t *testing.T) {
	f := New(&fakeRunner{err: errors.New("Private video")}, logger.Discard())

	res := f.Fetch(context.Background(), "vid", "t", t.TempDir(), nil)
	if res.Success {
		t.Fatal("Expected failure")
	}
	if res.Error != "Video is unavailable, private, or deleted" {
		t.Errorf("Error = %q", res.Error)
	}
	if res.FilePath != "" || res.FileSize != 0 {
		t.Error("Failed result must not carry file data")
	}
}

func TestFetch_MissingOutputIsFailure(t *testing.T) {
	f := New(&fakeRunner{}, logger.Discard())

	res := f.Fetch(context.Background(), "vid", "t", t.TempDir(), nil)
	if res.Success {
		t.Fatal("Expected failure when the tool claims success but wrote nothing")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("Error = %q", res.Error)
	}
}

func TestFetch_Timeout(t *testing.T) {
	f := New(&fakeRunner{block: true}, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := f.Fetch(ctx, "vid", "t", t.TempDir(), nil)
	if res.Success || res.Error != "Download timed out" {
		t.Errorf("Expected timeout failure, got %+v", res)
	}
}

func TestLastErrorLine(t *testing.T) {
	stderr := "WARNING: something\nERROR: [youtube] x: Video unavailable\n\n"
	if got := lastErrorLine(stderr); got != "[youtube] x: Video unavailable" {
		t.Errorf("lastErrorLine() = %q", got)
	}
	if got := lastErrorLine("plain failure\n"); got != "plain failure" {
		t.Errorf("lastErrorLine() = %q", got)
	}
	if got := lastErrorLine(""); got != "" {
		t.Errorf("lastErrorLine() = %q", got)
	}
}
