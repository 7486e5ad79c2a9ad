package memory

import (
	"context"
	"encoding/json"
	"sync"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[attemptKey]map[string]json.RawMessage
}

type attemptKey struct {
	quizID string
	userID string
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[attemptKey]map[string]json.RawMessage),
	}
}

func (s *AttemptStore) SaveAnswer(_ context.Context, quizID, userID, questionID string, answer json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptKey{quizID: quizID, userID: userID}
	answers, ok := s.attempts[key]
	if !ok {
		answers = make(map[string]json.RawMessage)
		s.attempts[key] = answers
	}
	answers[questionID] = append(json.RawMessage(nil), answer...)
	return nil
}

// Answers returns a copy of the recorded answers; an unknown attempt has none.
func (s *AttemptStore) Answers(_ context.Context, quizID, userID string) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answers := s.attempts[attemptKey{quizID: quizID, userID: userID}]
	out := make(map[string]json.RawMessage, len(answers))
	for id, raw := range answers {
		out[id] = raw
	}
	return out, nil
}

func (s *AttemptStore) Clear(_ context.Context, quizID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptKey{quizID: quizID, userID: userID})
	return nil
}
