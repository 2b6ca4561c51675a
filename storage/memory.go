package storage

import (
	"sync"
)

// In memory implementation of Storage below

type MemoryStorage struct {
	mutex  sync.RWMutex
	Values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Values: map[string]string{},
	}
}

func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	value, found := s.Values[key]
	return value, found, nil
}

func (s *MemoryStorage) Set(key string, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(keys ...string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, key := range keys {
		delete(s.Values, key)
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
