package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/nlpkit/internal/models"
)

// DefaultLimit is the number of analyses kept when no limit is given.
const DefaultLimit = 1000

// AnalysisStore keeps the most recent analyses served over HTTP. Once full,
// the oldest entry is evicted.
type AnalysisStore struct {
	analyses map[string]*models.Analysis
	order    []string
	limit    int
	mu       sync.RWMutex
}

func New(limit int) *AnalysisStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &AnalysisStore{
		analyses: make(map[string]*models.Analysis),
		limit:    limit,
	}
}

func (s *AnalysisStore) Get(id string) (*models.Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, exists := s.analyses[id]
	return a, exists
}

func (s *AnalysisStore) Set(a *models.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.analyses[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.analyses[a.ID] = a

	for len(s.order) > s.limit {
		delete(s.analyses, s.order[0])
		s.order = s.order[1:]
	}
}

// List returns the stored analyses, oldest first.
func (s *AnalysisStore) List() []*models.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Analysis, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.analyses[id])
	}
	return result
}

func (s *AnalysisStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.analyses[id]; !exists {
		return false
	}
	delete(s.analyses, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}
