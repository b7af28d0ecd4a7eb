package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"events-app/internal/logger"
)

// URLPrefix is the public path under which stored files are served.
const URLPrefix = "/uploads/"

// pendingDirName holds intent markers for staged files. A file whose marker
// survives a crash is an orphan and gets removed by SweepOrphans.
const pendingDirName = ".pending"

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("image exceeds the maximum allowed size")
)

// Store is the upload sidecar: a flat directory of image files referenced by
// event rows. Files are staged with an intent marker, confirmed once the row
// write commits, and discarded otherwise.
type Store struct {
	dir        string
	pendingDir string
	maxBytes   int64
	log        *logger.Logger
}

func NewStore(dir string, maxBytes int64, log *logger.Logger) (*Store, error) {
	pendingDir := filepath.Join(dir, pendingDirName)
	if err := os.MkdirAll(pendingDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, pendingDir: pendingDir, maxBytes: maxBytes, log: log}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Stage validates the upload and writes it under a fresh collision-free name
// together with an intent marker. Returns the public URL path.
func (s *Store) Stage(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", ErrNotImage
	}

	name := newFileName(header.Filename)

	marker, err := os.Create(filepath.Join(s.pendingDir, name))
	if err != nil {
		return "", fmt.Errorf("write intent marker: %w", err)
	}
	marker.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		os.Remove(filepath.Join(s.pendingDir, name))
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head), io.LimitReader(file, s.maxBytes+1)))
	if err != nil {
		s.Discard(URLPrefix + name)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > s.maxBytes {
		s.Discard(URLPrefix + name)
		return "", ErrTooLarge
	}

	return URLPrefix + name, nil
}

// Confirm drops the intent marker once the row referencing the file is durable.
func (s *Store) Confirm(urlPath string) {
	name := s.fileName(urlPath)
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.pendingDir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("UPLOAD", fmt.Sprintf("Failed to confirm %s: %v", name, err))
	}
}

// Discard removes a staged file and its marker after a failed create/update.
func (s *Store) Discard(urlPath string) {
	name := s.fileName(urlPath)
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("UPLOAD", fmt.Sprintf("Failed to discard %s: %v", name, err))
	}
	if err := os.Remove(filepath.Join(s.pendingDir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("UPLOAD", fmt.Sprintf("Failed to discard marker for %s: %v", name, err))
	}
}

// Remove deletes a confirmed file whose owning row is gone. Best effort: a
// failure is logged and never escalates.
func (s *Store) Remove(urlPath string) {
	name := s.fileName(urlPath)
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("UPLOAD", fmt.Sprintf("Failed to delete %s: %v", name, err))
	}
}

// Exists reports whether the named upload is present on disk.
func (s *Store) Exists(urlPath string) bool {
	name := s.fileName(urlPath)
	if name == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// SweepOrphans removes files whose intent marker is older than age, i.e. files
// staged by a request that never confirmed them. Returns the number removed.
func (s *Store) SweepOrphans(age time.Duration) int {
	entries, err := os.ReadDir(s.pendingDir)
	if err != nil {
		s.log.Warn("UPLOAD", fmt.Sprintf("Orphan sweep failed: %v", err))
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-age)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		s.Discard(URLPrefix + entry.Name())
		removed++
	}
	if removed > 0 {
		s.log.Info("UPLOAD", fmt.Sprintf("Orphan sweep removed %d stale upload(s)", removed))
	}
	return removed
}

func (s *Store) fileName(urlPath string) string {
	if !strings.HasPrefix(urlPath, URLPrefix) {
		return ""
	}
	return filepath.Base(strings.TrimPrefix(urlPath, URLPrefix))
}

// newFileName builds a timestamp-plus-random name so concurrent uploads never
// collide. The original extension is kept for content-type serving.
func newFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
