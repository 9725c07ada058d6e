package transcript

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the largest transcript the service accepts (5 MiB).
const MaxUploadBytes = 5 * 1024 * 1024

var (
	// ErrUnsupportedType is returned for files that are not .txt or .pdf.
	ErrUnsupportedType = errors.New("only .txt and .pdf files are supported")

	// ErrTooLarge is returned for files above MaxUploadBytes.
	ErrTooLarge = errors.New("file size exceeds 5MB limit")
)

var allowedExt = map[string]bool{
	".txt": true,
	".pdf": true,
}

// Validate checks a candidate upload by name and size before any network
// I/O happens.
func Validate(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExt[ext] {
		return fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("%s (%d bytes): %w", name, size, ErrTooLarge)
	}
	return nil
}
