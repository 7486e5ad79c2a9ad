package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestAttemptStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(newClient(mr), time.Hour)

	if err := store.SaveAnswer(ctx, "quiz-1", "u1", "q1", json.RawMessage(`"b"`)); err != nil {
		t.Fatalf("save q1: %v", err)
	}
	if err := store.SaveAnswer(ctx, "quiz-1", "u1", "q2", json.RawMessage(`["a","c"]`)); err != nil {
		t.Fatalf("save q2: %v", err)
	}

	key := "attempt:quiz-1:u1:answers"
	if got := mr.HGet(key, "q2"); got != `["a","c"]` {
		t.Fatalf("expected raw answer in hash, got %q", got)
	}
	if ttl := mr.TTL(key); ttl != time.Hour {
		t.Fatalf("expected attempt ttl, got %v", ttl)
	}

	answers, err := store.Answers(ctx, "quiz-1", "u1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(answers) != 2 || string(answers["q1"]) != `"b"` {
		t.Fatalf("unexpected answers %v", answers)
	}

	if err := store.Clear(ctx, "quiz-1", "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(key) {
		t.Fatalf("expected redis key to be removed")
	}
	answers, _ = store.Answers(ctx, "quiz-1", "u1")
	if len(answers) != 0 {
		t.Fatalf("expected empty attempt, got %v", answers)
	}
}
