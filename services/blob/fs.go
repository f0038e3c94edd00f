package blobsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/document"
)

// fsStore keeps blobs on the local filesystem under rootDir and serves them
// at baseURL. The URL path mirrors the storage path so Delete can map a URL
// back to a file.
type fsStore struct {
	rootDir string
	baseURL string
}

var _ document.Blob = (*fsStore)(nil)

func NewFSStore(rootDir, baseURL string) (document.Blob, error) {
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating blob root")
	}
	return &fsStore{rootDir: rootDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *fsStore) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	path = filepath.ToSlash(filepath.Clean("/" + path))[1:] // no traversal outside rootDir
	dst := filepath.Join(s.rootDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrap(err, "creating blob dir")
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", errors.Wrap(err, "creating blob file")
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, "writing blob")
	}
	return s.baseURL + "/" + path, nil
}

func (s *fsStore) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.baseURL+"/") {
		return errors.New("url does not belong to this store")
	}
	path := strings.TrimPrefix(url, s.baseURL+"/")
	path = filepath.ToSlash(filepath.Clean("/" + path))[1:]
	if err := os.Remove(filepath.Join(s.rootDir, filepath.FromSlash(path))); err != nil {
		return errors.Wrap(err, "deleting blob")
	}
	return nil
}
