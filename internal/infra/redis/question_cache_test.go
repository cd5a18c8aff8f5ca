package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/redis"
)

type countingSource struct {
	questions []domain.Question
	loads     int
}

func (s *countingSource) QuestionSet(context.Context, string) ([]domain.Question, error) {
	s.loads++
	return s.questions, nil
}

func newCacheFixture(t *testing.T) (*redis.QuestionCache, *countingSource, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	source := &countingSource{questions: []domain.Question{
		{Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, Answer: "4"},
	}}
	return redis.NewQuestionCache(client, source, time.Minute), source, srv
}

func TestQuestionCacheLoadsOnceThenHits(t *testing.T) {
	ctx := context.Background()
	cache, source, srv := newCacheFixture(t)

	questions, err := cache.QuestionSet(ctx, "Math")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(questions) != 1 || source.loads != 1 {
		t.Fatalf("expected one load, got %d questions, %d loads", len(questions), source.loads)
	}
	if !srv.Exists("subject:Math:questions") {
		t.Fatal("expected the cache key to be set after a miss")
	}

	if _, err := cache.QuestionSet(ctx, "Math"); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if source.loads != 1 {
		t.Fatalf("cache hit must not touch the source, got %d loads", source.loads)
	}
}

func TestQuestionCacheInvalidateForcesReload(t *testing.T) {
	ctx := context.Background()
	cache, source, srv := newCacheFixture(t)

	if _, err := cache.QuestionSet(ctx, "Math"); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	if err := cache.Invalidate(ctx, "Math"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if srv.Exists("subject:Math:questions") {
		t.Fatal("expected the cache key to be dropped")
	}

	source.questions = append(source.questions, domain.Question{
		Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, Answer: "Paris",
	})
	questions, err := cache.QuestionSet(ctx, "Math")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(questions) != 2 || source.loads != 2 {
		t.Fatalf("expected fresh reload, got %d questions, %d loads", len(questions), source.loads)
	}
}

func TestQuestionCacheExpiryFallsThrough(t *testing.T) {
	ctx := context.Background()
	cache, source, srv := newCacheFixture(t)

	if _, err := cache.QuestionSet(ctx, "Math"); err != nil {
		t.Fatalf("warm read: %v", err)
	}
	srv.FastForward(2 * time.Minute)

	if _, err := cache.QuestionSet(ctx, "Math"); err != nil {
		t.Fatalf("read after expiry: %v", err)
	}
	if source.loads != 2 {
		t.Fatalf("expected reload after expiry, got %d loads", source.loads)
	}
}
