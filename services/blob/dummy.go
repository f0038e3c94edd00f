package blobsvc

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"sync"

	"github.com/aredu/arcportal/core/document"
)

// DummyStore is an in-memory blob store for tests. Prime DeleteErr to make
// Delete fail.
type DummyStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte // keyed by url
	baseURL   string
	DeleteErr error
}

var _ document.Blob = (*DummyStore)(nil)

func NewDummyStore() *DummyStore {
	return &DummyStore{blobs: make(map[string][]byte), baseURL: "dummy://blobs"}
}

func (s *DummyStore) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := s.baseURL + "/" + path

	s.mu.Lock()
	s.blobs[url] = b
	s.mu.Unlock()
	return url, nil
}

func (s *DummyStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.blobs[url]; !ok {
		return errors.New("blob not found")
	}
	delete(s.blobs, url)
	return nil
}

// Has reports whether a blob is still stored under url.
func (s *DummyStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[url]
	return ok
}
