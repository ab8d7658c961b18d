package imagestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var idPattern = regexp.MustCompile(`^[0-9a-f-]{36}$`)

// LocalStore writes each image next to a JSON sidecar holding its metadata.
type LocalStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

// NewLocalStore creates dir if needed. baseURL prefixes the id in returned
// image URLs.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}, nil
}

func (s *LocalStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *LocalStore) Save(ctx context.Context, img Image, content io.Reader) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readUpload(&img, content)
	if err != nil {
		return nil, err
	}
	img.ID = uuid.NewString()
	img.CreatedAt = s.now().UTC()
	img.URL = s.baseURL + "/" + img.ID

	path := filepath.Join(s.dir, img.ID+extensionFor(img))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	meta, err := json.Marshal(img)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.metaPath(img.ID), meta, 0o640); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write image metadata: %w", err)
	}
	return &img, nil
}

func (s *LocalStore) load(id string) (*Image, string, error) {
	if !idPattern.MatchString(id) {
		return nil, "", ErrNotFound
	}
	raw, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	var img Image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, "", fmt.Errorf("decode image metadata: %w", err)
	}
	return &img, filepath.Join(s.dir, id+extensionFor(img)), nil
}

func (s *LocalStore) Open(ctx context.Context, id string) (io.ReadCloser, *Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	img, path, err := s.load(id)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return f, img, nil
}

func (s *LocalStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, path, err := s.load(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Remove(s.metaPath(id))
}
