package storage

import (
	"context"
	"sync"

	"blog-hand/models"
)

// MemoryStore hält den Snapshot im Prozessspeicher. Er überlebt keinen Neustart.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []models.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ReplaceAll(_ context.Context, articles []*models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	snapshot := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		snapshot = append(snapshot, *a)
	}
	s.mu.Lock()
	s.articles = snapshot
	s.mu.Unlock()
	return len(snapshot), nil
}

// List gibt Kopien zurück, damit Aufrufer den Snapshot nicht verändern.
func (s *MemoryStore) List(_ context.Context, f Filter) ([]*models.Article, error) {
	s.mu.RLock()
	copies := make([]*models.Article, 0, len(s.articles))
	for i := range s.articles {
		a := s.articles[i]
		copies = append(copies, &a)
	}
	s.mu.RUnlock()
	return ApplyFilter(copies, f), nil
}

func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.articles)), nil
}
