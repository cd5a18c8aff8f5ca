package file

import (
	"context"
	"path/filepath"
	"sync"

	"quiz-admin-service/internal/domain"
)

// ScoreLedger stores the append-only score list in scores.json.
type ScoreLedger struct {
	path string

	mu      sync.Mutex
	records []domain.ScoreRecord
}

func OpenScoreLedger(dir string) (*ScoreLedger, error) {
	l := &ScoreLedger{path: filepath.Join(dir, "scores.json")}
	if err := loadDocument(l.path, &l.records, "[]"); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ScoreLedger) Append(_ context.Context, rec domain.ScoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
	return saveDocument(l.path, l.records)
}

func (l *ScoreLedger) List(_ context.Context) ([]domain.ScoreRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ScoreRecord(nil), l.records...), nil
}

func (l *ScoreLedger) Has(_ context.Context, student, subject string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
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
	kept := make([]domain.ScoreRecord, 0, len(l.records))
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
	return saveDocument(l.path, l.records)
}

func (l *ScoreLedger) DeleteBySubject(_ context.Context, subject string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := make([]domain.ScoreRecord, 0, len(l.records))
	for _, rec := range l.records {
		if rec.Subject == subject {
			continue
		}
		kept = append(kept, rec)
	}
	dropped := len(l.records) - len(kept)
	if dropped == 0 {
		return 0, nil
	}
	l.records = kept
	return dropped, saveDocument(l.path, l.records)
}
