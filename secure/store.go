package secure

import (
	"sync"

	"github.com/etnz/finance/failure"
	"github.com/peterbourgon/diskv/v3"
)

// Store persists the wrapped key material.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Has(key string) bool
	Erase(key string) error
}

// DiskStore is a Store keeping one file per key in a directory.
type DiskStore struct {
	d *diskv.Diskv
}

// NewDiskStore returns a Store backed by the directory dir, created on first write.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 64 * 1024,
		PathPerm:     0o700,
		FilePerm:     0o600,
	})}
}

func (s *DiskStore) Read(key string) ([]byte, error) {
	v, err := s.d.Read(key)
	if err != nil {
		return nil, failure.Wrap(failure.IO, err, "cannot read %q from keystore", key)
	}
	return v, nil
}

func (s *DiskStore) Write(key string, val []byte) error {
	return failure.Wrap(failure.IO, s.d.Write(key, val), "cannot write %q to keystore", key)
}

func (s *DiskStore) Has(key string) bool { return s.d.Has(key) }

func (s *DiskStore) Erase(key string) error {
	return failure.Wrap(failure.IO, s.d.Erase(key), "cannot erase %q from keystore", key)
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore { return &MemStore{m: make(map[string][]byte)} }

func (s *MemStore) Read(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, failure.New(failure.IO, "no %q in keystore", key)
	}
	return append([]byte(nil), v...), nil
}

func (s *MemStore) Write(key string, val []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), val...)
	return nil
}

func (s *MemStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[key]
	return ok
}

func (s *MemStore) Erase(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
