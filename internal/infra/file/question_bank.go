package file

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"quiz-admin-service/internal/domain"
)

// QuestionBank stores subjects and their question lists in questions.json.
// Question order within a subject is insertion order; subject names are
// listed sorted, since a JSON object does not keep key order.
type QuestionBank struct {
	path string

	mu       sync.Mutex
	subjects map[string][]domain.Question
}

func OpenQuestionBank(dir string) (*QuestionBank, error) {
	b := &QuestionBank{
		path:     filepath.Join(dir, "questions.json"),
		subjects: make(map[string][]domain.Question),
	}
	if err := loadDocument(b.path, &b.subjects, "{}"); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *QuestionBank) QuestionSet(_ context.Context, subject string) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Question(nil), b.subjects[subject]...), nil
}

func (b *QuestionBank) Subjects(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.subjects))
	for name := range b.subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (b *QuestionBank) AddSubject(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subjects[name]; ok {
		return domain.ErrSubjectExists
	}
	b.subjects[name] = []domain.Question{}
	return saveDocument(b.path, b.subjects)
}

func (b *QuestionBank) AddQuestion(_ context.Context, subject string, q domain.Question) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subjects[subject] = append(b.subjects[subject], q)
	return saveDocument(b.path, b.subjects)
}
