package memory

import (
	"context"
	"sort"
	"sync"

	"brainquiz/internal/domain"
)

// ScoreStore is an in-memory implementation of app.ScoreRepository.
type ScoreStore struct {
	mu      sync.RWMutex
	entries []domain.HighScoreEntry
	nextID  int64
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

// Init is a no-op; the slice is ready on construction.
func (s *ScoreStore) Init(context.Context) error {
	return nil
}

func (s *ScoreStore) Record(_ context.Context, entry domain.HighScoreEntry) (domain.HighScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, entry)
	return entry, nil
}

// Top orders by score descending, earlier entries first on ties.
func (s *ScoreStore) Top(_ context.Context, n int) ([]domain.HighScoreEntry, error) {
	if n <= 0 {
		return []domain.HighScoreEntry{}, nil
	}
	s.mu.RLock()
	sorted := append([]domain.HighScoreEntry(nil), s.entries...)
	s.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []domain.HighScoreEntry{}
	}
	return sorted, nil
}

func (s *ScoreStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}
