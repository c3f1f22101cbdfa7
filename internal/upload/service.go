package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedType = errors.New("only image and video files are allowed")

type StoredFile struct {
	FileName     string `json:"fileName"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	URL          string `json:"url"`
}

// Service stores uploaded media on local disk under uuid-prefixed names so
// client-supplied filenames never touch the filesystem.
type Service struct {
	dir string
}

func NewService(dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Service{dir: dir}, nil
}

func (s *Service) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	mimeType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") && !strings.HasPrefix(mimeType, "video/") {
		return nil, ErrUnsupportedType
	}

	name := uuid.NewString() + filepath.Ext(fh.Filename)

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &StoredFile{
		FileName:     name,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		Size:         size,
		URL:          "/uploads/" + name,
	}, nil
}

// Dir exposes the storage directory for the static file server.
func (s *Service) Dir() string {
	return s.dir
}
