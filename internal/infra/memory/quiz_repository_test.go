package memory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"quiz-grading-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		ConfigLoader: NewStaticConfigLoader(map[string]any{
			"quiz-1": sampleLegacyQuiz(),
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	cfg, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
	if cfg.Version != domain.CurrentVersion || cfg.Kind() != domain.KindRegular {
		t.Fatalf("expected canonical regular quiz, got version=%q kind=%q", cfg.Version, cfg.Kind())
	}

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	repo.Invalidate("quiz-1")
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryExpires(t *testing.T) {
	loader := &countingLoader{ConfigLoader: NewStaticConfigLoader(map[string]any{"quiz-1": sampleLegacyQuiz()})}
	repo := NewQuizRepository(loader, time.Minute)
	now := time.Now()
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuiz(context.Background(), "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected expired entry to reload, loader calls %d", loader.calls)
	}
}

func TestQuizRepositoryRejectsBrokenConfig(t *testing.T) {
	loader := &countingLoader{ConfigLoader: NewStaticConfigLoader(map[string]any{
		"broken": `["not", "an", "object"]`,
	})}
	repo := NewQuizRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := repo.GetQuiz(context.Background(), "broken")
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected failures not to be cached, loader calls %d", loader.calls)
	}

	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestStaticConfigLoaderPassesBytesThrough(t *testing.T) {
	raw := []byte(`{"id":"q","title":"T"}`)
	loader := NewStaticConfigLoader(map[string]any{"q": raw, "m": json.RawMessage(raw)})
	for _, id := range []string{"q", "m"} {
		got, err := loader.LoadRawConfig(context.Background(), id)
		if err != nil || string(got) != string(raw) {
			t.Fatalf("%s: expected raw bytes back, got %q, %v", id, got, err)
		}
	}
}

type countingLoader struct {
	ConfigLoader
	calls int
}

func (l *countingLoader) LoadRawConfig(ctx context.Context, quizID string) ([]byte, error) {
	l.calls++
	return l.ConfigLoader.LoadRawConfig(ctx, quizID)
}

func sampleLegacyQuiz() map[string]any {
	return map[string]any{
		"id":    "quiz-1",
		"title": "Arithmetic",
		"pages": []any{
			map[string]any{
				"id":    "p1",
				"title": "Page 1",
				"questions": []any{
					map[string]any{
						"id":            "q1",
						"type":          "multiple-choice",
						"prompt":        "What is 2 + 2?",
						"options":       map[string]any{"a": "3", "b": "4", "c": "5"},
						"correctAnswer": "b",
					},
				},
			},
		},
	}
}
