package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore keeps in-progress answers in Redis so any instance can finish an attempt.
// Answers are stored as: HSET attempt:{quizID}:{userID}:answers {questionID} {answer JSON}
type AttemptStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{client: client, ttl: ttl}
}

// SaveAnswer records the answer and refreshes the attempt TTL.
func (s *AttemptStore) SaveAnswer(ctx context.Context, quizID, userID, questionID string, answer json.RawMessage) error {
	key := s.key(quizID, userID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, questionID, []byte(answer))
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save answer %s: %w", questionID, err)
	}
	return nil
}

func (s *AttemptStore) Answers(ctx context.Context, quizID, userID string) (map[string]json.RawMessage, error) {
	values, err := s.client.HGetAll(ctx, s.key(quizID, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	out := make(map[string]json.RawMessage, len(values))
	for questionID, raw := range values {
		out[questionID] = json.RawMessage(raw)
	}
	return out, nil
}

func (s *AttemptStore) Clear(ctx context.Context, quizID, userID string) error {
	return s.client.Del(ctx, s.key(quizID, userID)).Err()
}

func (s *AttemptStore) key(quizID, userID string) string {
	return "attempt:" + quizID + ":" + userID + ":answers"
}
