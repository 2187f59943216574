package uploader

import (
	"errors"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
)

// Previewer creates a locally displayable reference for a selected file and
// releases it once the selection is replaced or cleared.
type Previewer interface {
	Create(file File) (string, error)
	Release(ref string) error
}

// TempFilePreviewer materializes previews as temporary files. The file path is
// the preview reference.
type TempFilePreviewer struct {
	Dir string // empty means os.TempDir()
}

func (p TempFilePreviewer) Create(file File) (string, error) {
	ext := ""
	if mtype := mimetype.Lookup(file.MediaType); mtype != nil {
		ext = mtype.Extension()
	}

	f, err := os.CreateTemp(p.Dir, "snapquip-preview-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create preview file: %w", err)
	}
	if _, err := f.Write(file.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close preview file: %w", err)
	}
	return f.Name(), nil
}

func (p TempFilePreviewer) Release(ref string) error {
	if ref == "" {
		return nil
	}
	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove preview file: %w", err)
	}
	return nil
}
