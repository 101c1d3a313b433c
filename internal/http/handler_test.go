package httpapp

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/cesargomez89/tubedrums/internal/app"
	"github.com/cesargomez89/tubedrums/internal/catalog"
	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/fetcher"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
)

type stubFetcher struct {
	release chan struct{} // when set, every fetch waits on it
}

func (f *stubFetcher) Fetch(ctx context.Context, videoID, title, destDir string, onProgress func(int)) fetcher.Result {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return fetcher.Result{Error: "Download interrupted"}
		}
	}
	path := filepath.Join(destDir, videoID+"_"+title+".mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		return fetcher.Result{Error: err.Error()}
	}
	return fetcher.Result{Success: true, FilePath: path, FileSize: 5}
}

type staticCreds struct {
	cred catalog.Credential
}

func (s staticCreds) Credential(ctx context.Context) catalog.Credential {
	return s.cred
}

type testEnv struct {
	srv     *httptest.Server
	manager *app.DownloadManager
}

func newTestEnv(t *testing.T, opts catalog.ManagerOptions, vf app.VideoFetcher, auth CredentialSource) *testEnv {
	t.Helper()
	layout, err := storage.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("NewLayout failed: %v", err)
	}
	opts.Logger = logger.Discard()
	pm := catalog.NewProviderManager(opts)

	m := app.NewDownloadManager(pm, vf, layout, logger.Discard(), app.Options{
		FetchTimeout: 5 * time.Second,
		Now:          func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) },
	})
	t.Cleanup(m.Stop)

	h := NewHandler(m, pm, auth, logger.Discard())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, manager: m}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code domain.ErrorCode) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("Expected status %d, got %d", status, resp.StatusCode)
	}
	var body errorResponse
	decode(t, resp, &body)
	if body.Error.Code != string(code) {
		t.Errorf("Expected code %s, got %s (%s)", code, body.Error.Code, body.Error.Message)
	}
	if body.Error.StatusCode != status {
		t.Errorf("Expected statusCode %d in body, got %d", status, body.Error.StatusCode)
	}
}

func (e *testEnv) start(t *testing.T, playlistID string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/downloads/start", `{"playlistId":"`+playlistID+`"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}
	var body struct {
		Data struct {
			DownloadID string `json:"downloadId"`
			StatusURL  string `json:"statusUrl"`
		} `json:"data"`
		Status struct {
			TotalVideos int `json:"totalVideos"`
		} `json:"status"`
		Success bool `json:"success"`
	}
	decode(t, resp, &body)
	if !body.Success || body.Data.DownloadID == "" {
		t.Fatalf("Unexpected start response: %+v", body)
	}
	if body.Data.StatusURL != "/api/downloads/"+body.Data.DownloadID+"/status" {
		t.Errorf("Unexpected statusUrl %q", body.Data.StatusURL)
	}
	return body.Data.DownloadID
}

func (e *testEnv) waitCompleted(t *testing.T, id string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job, err := e.manager.GetStatus(id); err == nil && job.State == domain.JobStateCompleted {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for download to complete")
}

func TestStartDownload_Validation(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(1)}, &stubFetcher{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"playlistId":`},
		{"missing id", `{}`},
		{"too long", `{"playlistId":"` + strings.Repeat("x", 101) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/downloads/start", tt.body)
			expectError(t, resp, http.StatusBadRequest, domain.CodeValidation)
		})
	}
}

func TestStartDownload_EmptyPlaylist(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(0)}, &stubFetcher{}, nil)

	resp := env.do(t, http.MethodPost, "/api/downloads/start", `{"playlistId":"PLempty"}`)
	expectError(t, resp, http.StatusBadRequest, domain.CodeBadRequest)
}

func TestStartDownload_RequiresCatalogSource(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{DataAPI: catalog.NewMockProvider(1)}, &stubFetcher{}, nil)

	resp := env.do(t, http.MethodPost, "/api/downloads/start", `{"playlistId":"PL1"}`)
	expectError(t, resp, http.StatusServiceUnavailable, domain.CodeYouTubeNotAuthed)
}

func TestStartDownload_UsesStoredCredential(t *testing.T) {
	api := catalog.NewMockProvider(1)
	pub := catalog.NewMockProvider(1)
	auth := staticCreds{cred: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})}
	env := newTestEnv(t, catalog.ManagerOptions{DataAPI: api, Public: pub}, &stubFetcher{}, auth)

	env.start(t, "PLprivate")
	if api.Calls != 1 || pub.Calls != 0 {
		t.Errorf("Expected listing through the Data API, got api=%d public=%d", api.Calls, pub.Calls)
	}
}

func TestDownloadLifecycle(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(2)}, &stubFetcher{}, nil)

	id := env.start(t, "PLlife")
	env.waitCompleted(t, id)

	resp := env.do(t, http.MethodGet, "/api/downloads/"+id+"/status", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var status struct {
		Data struct {
			Status          string `json:"status"`
			PlaylistTitle   string `json:"playlistTitle"`
			CompletedVideos int    `json:"completedVideos"`
			Videos          []struct {
				VideoID string `json:"videoId"`
				Status  string `json:"status"`
			} `json:"videos"`
		} `json:"data"`
	}
	decode(t, resp, &status)
	if status.Data.Status != "completed" || status.Data.CompletedVideos != 2 || len(status.Data.Videos) != 2 {
		t.Errorf("Unexpected status: %+v", status.Data)
	}

	resp = env.do(t, http.MethodGet, "/api/downloads", "")
	var list struct {
		Data  []json.RawMessage `json:"data"`
		Count int               `json:"count"`
	}
	decode(t, resp, &list)
	if list.Count != 1 || len(list.Data) != 1 {
		t.Errorf("Expected 1 download listed, got %d", list.Count)
	}

	resp = env.do(t, http.MethodGet, "/api/downloads/"+id+"/stats", "")
	var stats struct {
		Data struct {
			TotalFiles int   `json:"totalFiles"`
			TotalSize  int64 `json:"totalSize"`
		} `json:"data"`
	}
	decode(t, resp, &stats)
	if stats.Data.TotalFiles != 2 || stats.Data.TotalSize != 10 {
		t.Errorf("Unexpected stats: %+v", stats.Data)
	}

	resp = env.do(t, http.MethodGet, "/api/downloads/"+id+"/zip", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for zip, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Expected application/zip, got %s", ct)
	}
	wantDisposition := `attachment; filename="Mock_Playlist_PLlife_2025-01-15.zip"`
	if cd := resp.Header.Get("Content-Disposition"); cd != wantDisposition {
		t.Errorf("Expected %s, got %s", wantDisposition, cd)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Reading zip failed: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Invalid zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(zr.File))
	}

	resp = env.do(t, http.MethodDelete, "/api/downloads/"+id+"/record", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 removing record, got %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, "/api/downloads/"+id+"/status", "")
	expectError(t, resp, http.StatusNotFound, domain.CodeNotFound)
}

func TestDownloadID_Validation(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(1)}, &stubFetcher{}, nil)

	resp := env.do(t, http.MethodGet, "/api/downloads/not-a-uuid/status", "")
	expectError(t, resp, http.StatusBadRequest, domain.CodeValidation)

	resp = env.do(t, http.MethodGet, "/api/downloads/0b8f3b6e-7c1f-4e2a-9a43-3f0d2b1c5e77/status", "")
	expectError(t, resp, http.StatusNotFound, domain.CodeNotFound)

	resp = env.do(t, http.MethodDelete, "/api/downloads/0b8f3b6e-7c1f-4e2a-9a43-3f0d2b1c5e77", "")
	expectError(t, resp, http.StatusNotFound, domain.CodeNotFound)
}

func TestCancelAndZipWhileRunning(t *testing.T) {
	vf := &stubFetcher{release: make(chan struct{})}
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(3)}, vf, nil)

	id := env.start(t, "PLrun")

	resp := env.do(t, http.MethodGet, "/api/downloads/"+id+"/zip", "")
	expectError(t, resp, http.StatusBadRequest, domain.CodeDownloadNotCompleted)

	resp = env.do(t, http.MethodDelete, "/api/downloads/"+id+"/record?cleanup=true", "")
	expectError(t, resp, http.StatusBadRequest, domain.CodeBadRequest)

	resp = env.do(t, http.MethodDelete, "/api/downloads/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on cancel, got %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}
	decode(t, resp, &body)
	if !body.Success || body.Message != "Download cancelled successfully" {
		t.Errorf("Unexpected cancel response: %+v", body)
	}

	resp = env.do(t, http.MethodDelete, "/api/downloads/"+id, "")
	expectError(t, resp, http.StatusBadRequest, domain.CodeBadRequest)

	close(vf.release)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, catalog.ManagerOptions{Public: catalog.NewMockProvider(1)}, &stubFetcher{}, nil)

	resp := env.do(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status        string `json:"status"`
		Authenticated bool   `json:"authenticated"`
	}
	decode(t, resp, &body)
	if body.Status != "ok" || body.Authenticated {
		t.Errorf("Unexpected health body: %+v", body)
	}
}
