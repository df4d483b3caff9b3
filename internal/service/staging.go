package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// ErrStaging marks a local filesystem failure while receiving an upload.
// Nothing has been published when it is returned.
var ErrStaging = errors.New("failed to stage upload")

var reIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return reIllegalFilenameChars.ReplaceAllString(filename, "_")
}

// Stager materializes multipart uploads into uniquely named files under a
// caller-provided scratch directory.
type Stager struct {
	dir string
}

func NewStager(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Stager{dir: dir}, nil
}

type StagedFile struct {
	Name string
	Path string
}

func (s *Stager) Stage(fh *multipart.FileHeader) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaging, err)
	}
	defer src.Close()

	name := uuid.NewString() + "-" + SanitizeFilename(fh.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaging, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrStaging, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %v", ErrStaging, err)
	}

	return &StagedFile{Name: name, Path: path}, nil
}

// Discard removes the staged file. Failure leaves a stale temp file behind,
// which is acceptable; it never fails the enclosing operation.
func (f *StagedFile) Discard() {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to delete staged file", "path", f.Path, "error", err.Error())
	}
}

// Sweep removes staged files older than ttl and reports how many were
// deleted. Files still being written by concurrent requests are younger
// than any sane ttl.
func (s *Stager) Sweep(ttl time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
				slog.Warn("failed to sweep staged file", "name", entry.Name(), "error", err.Error())
				continue
			}
			removed++
		}
	}
	return removed, nil
}
