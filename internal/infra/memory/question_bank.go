package memory

import (
	"context"
	"sync"

	"quiz-admin-service/internal/domain"
)

// QuestionBank is an in-memory implementation of app.QuestionBank, used in
// tests and as a seedable default. Subject order is insertion order.
type QuestionBank struct {
	mu       sync.RWMutex
	order    []string
	subjects map[string][]domain.Question
}

func NewQuestionBank() *QuestionBank {
	return &QuestionBank{subjects: make(map[string][]domain.Question)}
}

// Seed replaces the bank content; handy for tests.
func (b *QuestionBank) Seed(subjects map[string][]domain.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = b.order[:0]
	b.subjects = make(map[string][]domain.Question, len(subjects))
	for name, qs := range subjects {
		b.order = append(b.order, name)
		b.subjects[name] = append([]domain.Question(nil), qs...)
	}
}

func (b *QuestionBank) QuestionSet(_ context.Context, subject string) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.Question(nil), b.subjects[subject]...), nil
}

func (b *QuestionBank) Subjects(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.order...), nil
}

func (b *QuestionBank) AddSubject(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subjects[name]; ok {
		return domain.ErrSubjectExists
	}
	b.subjects[name] = nil
	b.order = append(b.order, name)
	return nil
}

func (b *QuestionBank) AddQuestion(_ context.Context, subject string, q domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subjects[subject]; !ok {
		b.order = append(b.order, subject)
	}
	b.subjects[subject] = append(b.subjects[subject], q)
	return nil
}
