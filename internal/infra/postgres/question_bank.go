package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quiz-admin-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionBank stores each subject's question list as JSONB in the subjects
// table. Subject listing follows insertion order (serial id).
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) QuestionSet(ctx context.Context, subject string) ([]domain.Question, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT questions FROM subjects WHERE name=$1`, subject).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return []domain.Question{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load question set: %w", err)
	}
	questions := []domain.Question{}
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal question set: %w", err)
	}
	return questions, nil
}

func (b *QuestionBank) Subjects(ctx context.Context) ([]string, error) {
	rows, err := b.pool.Query(ctx, `SELECT name FROM subjects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (b *QuestionBank) AddSubject(ctx context.Context, name string) error {
	tag, err := b.pool.Exec(ctx,
		`INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("add subject: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubjectExists
	}
	return nil
}

func (b *QuestionBank) AddQuestion(ctx context.Context, subject string, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	// Upsert keeps the auto-create-on-first-question behavior.
	_, err = b.pool.Exec(ctx, `
		INSERT INTO subjects (name, questions) VALUES ($1, jsonb_build_array($2::jsonb))
		ON CONFLICT (name) DO UPDATE SET questions = subjects.questions || $2::jsonb`,
		subject, data)
	if err != nil {
		return fmt.Errorf("add question: %w", err)
	}
	return nil
}
