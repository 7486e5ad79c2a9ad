package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-grading-service/internal/domain"
	"quiz-grading-service/internal/schema"
)

// ConfigLoader fetches a stored quiz config in whatever version it was saved.
type ConfigLoader interface {
	LoadRawConfig(ctx context.Context, quizID string) ([]byte, error)
}

// QuizRepository resolves configs to the canonical version and caches them with TTL
// to avoid repeated DB hits.
type QuizRepository struct {
	loader ConfigLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	cfg       domain.QuizConfig
	expiresAt time.Time
}

func NewQuizRepository(loader ConfigLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizConfig, error) {
	if cfg, ok := r.cached(quizID); ok {
		return cfg, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if cfg, ok := r.cached(quizID); ok {
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

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			cfg:       cfg,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return cfg, nil
	})
	if err != nil {
		return domain.QuizConfig{}, err
	}
	return result.(domain.QuizConfig), nil
}

// Invalidate drops a cached config, e.g. after an author edit.
func (r *QuizRepository) Invalidate(quizID string) {
	r.mu.Lock()
	delete(r.cache, quizID)
	r.mu.Unlock()
}

func (r *QuizRepository) cached(quizID string) (domain.QuizConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.QuizConfig{}, false
	}
	return entry.cfg, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticConfigLoader serves configs from an in-memory map (useful for tests/demos).
// Values may be JSON bytes, JSON text or anything encoding/json can marshal.
type StaticConfigLoader struct {
	configs map[string]any
}

func NewStaticConfigLoader(configs map[string]any) *StaticConfigLoader {
	return &StaticConfigLoader{configs: configs}
}

func (l *StaticConfigLoader) LoadRawConfig(_ context.Context, quizID string) ([]byte, error) {
	v, ok := l.configs[quizID]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	switch t := v.(type) {
	case []byte:
		return t, nil
	case json.RawMessage:
		return t, nil
	case string:
		return []byte(t), nil
	}
	return json.Marshal(v)
}
