package uploader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize is the largest image the uploader accepts (5 MB)
const MaxFileSize = 5 * 1024 * 1024

// File is one user-selected file. MediaType is the declared type, which
// selection validation trusts as-is.
type File struct {
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// LoadFile reads path and declares its media type by content sniffing, unless
// mediaTypeOverride is set. Contents of files above MaxFileSize are not read;
// selection rejects those on Size alone.
func LoadFile(path, mediaTypeOverride string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return File{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}

	file := File{
		Name: filepath.Base(path),
		Size: info.Size(),
	}

	if info.Size() <= MaxFileSize {
		file.Data, err = io.ReadAll(f)
		if err != nil {
			return File{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if mediaTypeOverride != "" {
		file.MediaType = mediaTypeOverride
		return file, nil
	}

	var mtype *mimetype.MIME
	if file.Data != nil {
		mtype = mimetype.Detect(file.Data)
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return File{}, fmt.Errorf("failed to rewind %s: %w", path, err)
		}
		mtype, err = mimetype.DetectReader(f)
		if err != nil {
			return File{}, fmt.Errorf("failed to detect type of %s: %w", path, err)
		}
	}
	file.MediaType = baseMediaType(mtype.String())

	return file, nil
}

// baseMediaType drops parameters such as "; charset=utf-8"
func baseMediaType(s string) string {
	base, _, _ := strings.Cut(s, ";")
	return strings.TrimSpace(base)
}
