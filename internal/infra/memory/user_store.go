package memory

import (
	"context"
	"sync"

	"adaptive-quiz-service/internal/domain"
)

// UserStore keeps registered users in process memory, keyed by auth id.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) GetByAuthID(_ context.Context, authID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[authID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.AuthID]; ok {
		return domain.User{}, domain.ErrUserConflict
	}
	for _, existing := range s.users {
		if user.Email != "" && existing.Email == user.Email {
			return domain.User{}, domain.ErrUserConflict
		}
	}
	s.users[user.AuthID] = user
	return user, nil
}
