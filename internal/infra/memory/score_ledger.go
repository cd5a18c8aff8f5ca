package memory

import (
	"context"
	"sync"

	"quiz-admin-service/internal/domain"
)

// ScoreLedger is an in-memory implementation of app.ScoreLedger.
// Records keep insertion order.
type ScoreLedger struct {
	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreLedger() *ScoreLedger {
	return &ScoreLedger{}
}

func (l *ScoreLedger) Append(_ context.Context, rec domain.ScoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return nil
}

func (l *ScoreLedger) List(_ context.Context) ([]domain.ScoreRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.ScoreRecord(nil), l.records...), nil
}

func (l *ScoreLedger) Has(_ context.Context, student, subject string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.records {
		if rec.Student == student && rec.Subject == subject {
			return true, nil
		}
	}
	return false, nil
}

func (l *ScoreLedger) Delete(_ context.Context, student, subject string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0]
	for _, rec := range l.records {
		if rec.Student == student && rec.Subject == subject {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == len(l.records) {
		return domain.ErrScoreNotFound
	}
	l.records = kept
	return nil
}

func (l *ScoreLedger) DeleteBySubject(_ context.Context, subject string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.records[:0]
	for _, rec := range l.records {
		if rec.Subject == subject {
			continue
		}
		kept = append(kept, rec)
	}
	dropped := len(l.records) - len(kept)
	l.records = kept
	return dropped, nil
}
