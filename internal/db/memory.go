package db

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in a map. Data is copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, namespace string) (*Record, error) {
	if err := checkNamespace("load", namespace); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[namespace]
	if !ok {
		return nil, nil
	}
	rec.Data = append([]byte(nil), rec.Data...)
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, namespace string, data []byte) error {
	if err := checkNamespace("save", namespace); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[namespace] = Record{
		Namespace: namespace,
		Data:      append([]byte(nil), data...),
		UpdatedAt: s.now().UTC(),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, namespace string) error {
	if err := checkNamespace("delete", namespace); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.records, namespace)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
