package logostore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eventdesk/server/internal/domain/ids"
)

// ErrUnsupportedType rejects uploads that are not JPEG or PNG images.
var ErrUnsupportedType = errors.New("unsupported logo content type")

var allowedExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// Store persists event logos and returns a URL the API can serve.
type Store interface {
	Save(ctx context.Context, contentType string, r io.Reader) (string, error)
}

// DiskStore writes logos under a local directory served at
// baseURL + "/uploads/". Filenames are minted ULIDs so uploads never
// collide or overwrite each other.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Save(_ context.Context, contentType string, r io.Reader) (string, error) {
	ext, ok := allowedExtensions[strings.ToLower(contentType)]
	if !ok {
		return "", ErrUnsupportedType
	}

	id, err := ids.NewULID()
	if err != nil {
		return "", fmt.Errorf("mint logo id: %w", err)
	}
	name := id + ext

	file, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create logo file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write logo: %w", err)
	}
	return s.baseURL + "/uploads/" + name, nil
}

// Dir exposes the backing directory for static file serving.
func (s *DiskStore) Dir() string {
	return s.dir
}
