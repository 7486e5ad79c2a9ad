package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/infra/memory"
	"quiz-grading-service/internal/schema"
)

// QuizRepository caches resolved configs in Redis and falls back to a loader on cache miss.
// Configs are stored canonical: SET quiz:{quizID}:config {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader memory.ConfigLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader memory.ConfigLoader, ttl time.Duration, logger *zap.Logger) *QuizRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizConfig, error) {
	if cfg, ok := r.cached(ctx, quizID); ok {
		return cfg, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cfg, ok := r.cached(ctx, quizID); ok {
			return cfg, nil
		}

		raw, err := r.loader.LoadRawConfig(ctx, quizID)
		if err != nil {
			return domain.QuizConfig{}, err
		}
		cfg, err := schema.ResolveToLatest(raw)
		if err != nil {
			return domain.QuizConfig{}, fmt.Errorf("resolve quiz %s: %w", quizID, err)
		}

		data, err := json.Marshal(cfg)
		if err != nil {
			r.logger.Warn("encode quiz config for cache", zap.String("quizId", quizID), zap.Error(err))
			return cfg, nil
		}
		if err := r.client.Set(ctx, r.configKey(quizID), data, r.ttlWithJitter()).Err(); err != nil {
			r.logger.Warn("cache quiz config", zap.String("quizId", quizID), zap.Error(err))
		}
		return cfg, nil
	})
	if err != nil {
		return domain.QuizConfig{}, err
	}
	return result.(domain.QuizConfig), nil
}

// Invalidate drops the cached config so the next read reloads it.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.configKey(quizID)).Err()
}

// cached returns the stored config. Entries that no longer resolve are treated as a miss.
func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.QuizConfig, bool) {
	data, err := r.client.Get(ctx, r.configKey(quizID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached quiz config", zap.String("quizId", quizID), zap.Error(err))
		}
		return domain.QuizConfig{}, false
	}
	cfg, err := schema.ResolveToLatest(data)
	if err != nil {
		r.logger.Warn("discard cached quiz config", zap.String("quizId", quizID), zap.Error(err))
		return domain.QuizConfig{}, false
	}
	return cfg, true
}

func (r *QuizRepository) configKey(quizID string) string {
	return "quiz:" + quizID + ":config"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
