package transcript

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nhle/transcript-insights/internal/api"
	"github.com/nhle/transcript-insights/internal/model"
	"github.com/nhle/transcript-insights/internal/store"
)

type fakeUploader struct {
	calls int
	names []string
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, content io.Reader) (*api.UploadResponse, error) {
	f.calls++
	f.names = append(f.names, filename)
	if f.err != nil {
		return nil, f.err
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}
	return &api.UploadResponse{Filename: filename, FileType: filepath.Ext(filename)}, nil
}

func newTestService(u Uploader) *Service {
	svc := NewService(u, store.NewMemoryStore())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte("a"), size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadRejectsBeforeNetwork(t *testing.T) {
	up := &fakeUploader{}
	svc := newTestService(up)

	_, err := svc.Upload(context.Background(), writeFile(t, "report.docx", 10))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("Upload error = %v", err)
	}
	_, err = svc.Upload(context.Background(), writeFile(t, "big.txt", MaxUploadBytes+1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Upload error = %v", err)
	}
	if up.calls != 0 {
		t.Errorf("uploader called %d times for rejected files", up.calls)
	}
	if len(svc.List(context.Background())) != 0 {
		t.Error("rejected file was recorded")
	}
}

func TestUploadAcceptsLimit(t *testing.T) {
	up := &fakeUploader{}
	svc := newTestService(up)

	file, err := svc.Upload(context.Background(), writeFile(t, "exact.txt", MaxUploadBytes))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if file.ID != "exact" || up.calls != 1 {
		t.Errorf("file = %+v, calls = %d", file, up.calls)
	}
}

func TestUploadPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeUploader{})

	if _, err := svc.Upload(ctx, writeFile(t, "first.txt", 3)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	second, err := svc.Upload(ctx, writeFile(t, "report.PDF", 1<<20))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if second.ID != "report" || second.Filename != "report.PDF" ||
		second.Status != model.TranscriptProcessed {
		t.Errorf("file = %+v", second)
	}

	files := svc.List(ctx)
	if len(files) != 2 || files[0].ID != "report" || files[1].ID != "first" {
		t.Fatalf("files = %+v", files)
	}

	// Uploading the same name again moves it to the front without duplicating.
	if _, err := svc.Upload(ctx, writeFile(t, "first.txt", 3)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	files = svc.List(ctx)
	if len(files) != 2 || files[0].ID != "first" {
		t.Errorf("files after re-upload = %+v", files)
	}
}

func TestUploadFailureNotRecorded(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeUploader{err: errors.New("connection refused")})

	if _, err := svc.Upload(ctx, writeFile(t, "call.txt", 3)); err == nil {
		t.Fatal("expected upload error")
	}
	if len(svc.List(ctx)) != 0 {
		t.Error("failed upload was recorded")
	}
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(&fakeUploader{})
	if _, err := svc.Upload(ctx, writeFile(t, "call.txt", 3)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := svc.SetStatus(ctx, "call", model.TranscriptError); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, ok := svc.Get(ctx, "call")
	if !ok || got.Status != model.TranscriptError {
		t.Errorf("Get = %+v, %v", got, ok)
	}
	if err := svc.SetStatus(ctx, "missing", model.TranscriptError); err == nil {
		t.Error("SetStatus on unknown id should fail")
	}
}

type echoUploader struct{}

func (echoUploader) Upload(_ context.Context, filename string, _ io.Reader) (*api.UploadResponse, error) {
	return &api.UploadResponse{Filename: filename}, nil
}

func TestConcurrentUploadAndStatusKeepBoth(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(echoUploader{})
	if _, err := svc.UploadReader(ctx, "first.txt", 3, strings.NewReader("abc")); err != nil {
		t.Fatalf("UploadReader: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := svc.SetStatus(ctx, "first", model.TranscriptError); err != nil {
				t.Errorf("SetStatus: %v", err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i)) + ".txt"
			if _, err := svc.UploadReader(ctx, name, 3, strings.NewReader("abc")); err != nil {
				t.Errorf("UploadReader(%s): %v", name, err)
			}
		}(i)
	}
	wg.Wait()

	if n := len(svc.List(ctx)); n != 21 {
		t.Errorf("List = %d files, want 21", n)
	}
	if got, _ := svc.Get(ctx, "first"); got.Status != model.TranscriptError {
		t.Errorf("first status = %q, want error", got.Status)
	}
}

func TestFileID(t *testing.T) {
	tests := map[string]string{
		"call.txt":        "call",
		"call.backup.pdf": "call",
		"noext":           "noext",
	}
	for in, want := range tests {
		if got := FileID(in); got != want {
			t.Errorf("FileID(%q) = %q, want %q", in, got, want)
		}
	}
}
