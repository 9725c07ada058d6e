package transcript

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
)

// Uploader sends a transcript to the service.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*api.UploadResponse, error)
}

// Service uploads transcripts and tracks the local file list.
type Service struct {
	uploader Uploader
	store    store.Store
	now      func() time.Time

	// mu serializes read-modify-write cycles of the file list.
	mu sync.Mutex
}

// NewService creates a transcript service.
func NewService(u Uploader, s store.Store) *Service {
	return &Service{uploader: u, store: s, now: time.Now}
}

// FileID derives the transcript id from the filename the service stored:
// everything before the first '.'.
func FileID(filename string) string {
	if i := strings.Index(filename, "."); i >= 0 {
		return filename[:i]
	}
	return filename
}

// Upload validates the file at path, sends it to the service and records
// it at the front of the file list.
func (s *Service) Upload(ctx context.Context, path string) (model.TranscriptFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.TranscriptFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return model.TranscriptFile{}, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	if err := Validate(name, info.Size()); err != nil {
		return model.TranscriptFile{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.TranscriptFile{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return s.UploadReader(ctx, name, info.Size(), f)
}

// UploadReader is Upload for content that does not come from a path.
func (s *Service) UploadReader(
	ctx context.Context,
	name string,
	size int64,
	content io.Reader,
) (model.TranscriptFile, error) {
	if err := Validate(name, size); err != nil {
		return model.TranscriptFile{}, err
	}

	resp, err := s.uploader.Upload(ctx, name, content)
	if err != nil {
		return model.TranscriptFile{}, fmt.Errorf("uploading %s: %w", name, err)
	}

	filename := resp.Filename
	if filename == "" {
		filename = name
	}
	file := model.TranscriptFile{
		ID:         FileID(filename),
		Filename:   filename,
		UploadedAt: s.now(),
		Status:     model.TranscriptProcessed,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files := s.List(ctx)
	out := make([]model.TranscriptFile, 0, len(files)+1)
	out = append(out, file)
	for _, f := range files {
		// A re-upload replaces the older entry with the same id.
		if f.ID != file.ID {
			out = append(out, f)
		}
	}
	if err := s.save(ctx, out); err != nil {
		return file, err
	}
	return file, nil
}

// List returns the uploaded files, newest first. An unreadable list is
// logged and treated as empty.
func (s *Service) List(ctx context.Context) []model.TranscriptFile {
	var files []model.TranscriptFile
	if _, err := store.GetJSON(ctx, s.store, store.TranscriptFilesKey, &files); err != nil {
		log.Printf("ignoring saved transcript list: %v", err)
		return nil
	}
	return files
}

// Get returns the file with the given id.
func (s *Service) Get(ctx context.Context, id string) (model.TranscriptFile, bool) {
	for _, f := range s.List(ctx) {
		if f.ID == id {
			return f, true
		}
	}
	return model.TranscriptFile{}, false
}

// SetStatus changes the processing status of a tracked file. It is the
// only mutation a file sees after upload.
func (s *Service) SetStatus(ctx context.Context, id string, status model.TranscriptStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := s.List(ctx)
	found := false
	for i := range files {
		if files[i].ID == id {
			files[i].Status = status
			found = true
		}
	}
	if !found {
		return fmt.Errorf("transcript %s not found", id)
	}
	return s.save(ctx, files)
}

func (s *Service) save(ctx context.Context, files []model.TranscriptFile) error {
	if err := store.SetJSON(ctx, s.store, store.TranscriptFilesKey, files); err != nil {
		return fmt.Errorf("saving transcript list: %w", err)
	}
	return nil
}
