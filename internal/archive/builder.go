// Package archive streams completed downloads as a store-only ZIP.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cesargomez89/tubedrums/internal/domain"
	"github.com/cesargomez89/tubedrums/internal/logger"
	"github.com/cesargomez89/tubedrums/internal/storage"
)

type Builder struct {
	Logger *logger.Logger
}

func NewBuilder(log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Default()
	}
	return &Builder{Logger: log.WithComponent("archive")}
}

// Stream is a live ZIP byte source. Emission begins as soon as it is built;
// framing errors come back from Read and, once emission ended, from Err.
type Stream struct {
	pr    *io.PipeReader
	done  chan struct{}
	err   error
	Files []string
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.pr.Read(p)
}

// Close abandons the stream. The writer goroutine stops at its next write.
func (s *Stream) Close() error {
	return s.pr.Close()
}

// Wait blocks until emission has ended and returns its error, if any.
func (s *Stream) Wait() error {
	<-s.done
	return s.err
}

// BuildStream verifies storagePath and starts writing every recognized video
// file in it, flattened and uncompressed, into the returned stream.
func (b *Builder) BuildStream(jobID, storagePath string) (*Stream, error) {
	if !storage.DirExists(storagePath) {
		return nil, domain.NewError(domain.CodeDirectoryNotFound, http.StatusInternalServerError,
			"Download directory not found").WithDetails(map[string]string{"downloadId": jobID})
	}

	files, err := storage.VideoFiles(storagePath)
	if err != nil {
		return nil, domain.NewError(domain.CodeZipGenerationFailed, http.StatusInternalServerError,
			"Failed to read download directory").Wrap(err)
	}
	if len(files) == 0 {
		return nil, domain.NewError(domain.CodeNoFilesToZip, http.StatusBadRequest,
			"No video files found to include in ZIP").WithDetails(map[string]string{"downloadId": jobID})
	}

	pr, pw := io.Pipe()
	s := &Stream{pr: pr, done: make(chan struct{}), Files: files}
	log := b.Logger.With("job_id", jobID)

	go func() {
		defer close(s.done)
		err := writeArchive(pw, files)
		if err != nil {
			s.err = domain.NewError(domain.CodeZipGenerationFailed, http.StatusInternalServerError,
				"Failed to generate ZIP file").Wrap(err)
			log.Error("ZIP generation failed", "error", err)
			_ = pw.CloseWithError(s.err)
			return
		}
		log.Info("ZIP stream finished", "files", len(files))
		_ = pw.Close()
	}()

	log.Info("ZIP stream started", "files", len(files), "path", storagePath)
	return s, nil
}

func writeArchive(w io.Writer, files []string) error {
	zw := zip.NewWriter(w)
	for _, path := range files {
		if err := addFile(zw, path); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header %s: %w", info.Name(), err)
	}
	header.Name = info.Name()
	header.Method = zip.Store

	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", info.Name(), err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("write entry %s: %w", info.Name(), err)
	}
	return nil
}

// Stats reports the recognized video files under storagePath.
func (b *Builder) Stats(storagePath string) (domain.DirStats, error) {
	return storage.Stats(storagePath)
}

var _ io.ReadCloser = (*Stream)(nil)
