package storage

import (
	"sync"

	"github.com/mvdbrink/pubtube/model"
)

// MemoryTokenStore keeps tokens in memory. It backs tests and running the
// service without a database; tokens do not survive a restart.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]model.Token
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]model.Token{}}
}

func (s *MemoryTokenStore) Save(sessionID string, token model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token

	return nil
}

func (s *MemoryTokenStore) Find(sessionID string) (model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	if !ok {
		return model.Token{}, ErrNotFound
	}

	return token, nil
}

func (s *MemoryTokenStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)

	return nil
}

type MemoryAttemptRepository struct {
	mu       sync.RWMutex
	attempts []model.Attempt
}

func NewMemoryAttemptRepository() *MemoryAttemptRepository {
	return &MemoryAttemptRepository{}
}

func (r *MemoryAttemptRepository) Record(attempt model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)

	return nil
}

func (r *MemoryAttemptRepository) FindBySession(sessionID string) ([]model.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := []model.Attempt{}
	for _, attempt := range r.attempts {
		if attempt.SessionID == sessionID {
			found = append(found, attempt)
		}
	}

	return found, nil
}
