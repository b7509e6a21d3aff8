package memory

import (
	"context"
	"sort"
	"sync"

	"adaptive-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// HistoryStore keeps quiz histories in process memory.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.HistoryRecord
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{records: make(map[string]domain.HistoryRecord)}
}

func (s *HistoryStore) Create(_ context.Context, record domain.HistoryRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}
	record.ID = uuid.NewString()

	s.mu.Lock()
	s.records[record.ID] = record
	s.mu.Unlock()
	return record.ID, nil
}

func (s *HistoryStore) GetByID(_ context.Context, id string) (domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return domain.HistoryRecord{}, domain.ErrHistoryNotFound
	}
	return record, nil
}

func (s *HistoryStore) ListByUser(_ context.Context, userID string) ([]domain.HistoryListItem, error) {
	s.mu.RLock()
	items := make([]domain.HistoryListItem, 0)
	for _, record := range s.records {
		if record.UserID == userID {
			items = append(items, record.ListItem())
		}
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}
