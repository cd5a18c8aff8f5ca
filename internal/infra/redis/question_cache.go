package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"quiz-admin-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionSource loads a subject's question set from the backing store.
type QuestionSource interface {
	QuestionSet(ctx context.Context, subject string) ([]domain.Question, error)
}

// QuestionCache keeps question sets in Redis as one JSON value per subject:
// SET subject:{name}:questions [...]. Cache misses fall through to the
// source behind a singleflight so a hot subject is loaded once.
type QuestionCache struct {
	client *redis.Client
	source QuestionSource
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) QuestionSet(ctx context.Context, subject string) ([]domain.Question, error) {
	key := c.key(subject)

	if questions, ok := c.fromCache(ctx, key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(subject, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if questions, ok := c.fromCache(ctx, key); ok {
			return questions, nil
		}

		questions, err := c.source.QuestionSet(ctx, subject)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops the cached set after the bank changes.
func (c *QuestionCache) Invalidate(ctx context.Context, subject string) error {
	return c.client.Del(ctx, c.key(subject)).Err()
}

func (c *QuestionCache) fromCache(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike fall through to the source.
		return nil, false
	}
	questions := []domain.Question{}
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (c *QuestionCache) key(subject string) string {
	return "subject:" + subject + ":questions"
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
