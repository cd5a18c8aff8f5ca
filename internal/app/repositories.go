package app

import (
	"context"

	"quiz-admin-service/internal/domain"
)

// QuestionSource is the read path for a subject's question set. An unknown
// subject yields an empty set, not an error. Caching layers implement this.
type QuestionSource interface {
	QuestionSet(ctx context.Context, subject string) ([]domain.Question, error)
}

// QuestionBank is the authoritative question store.
type QuestionBank interface {
	QuestionSource
	Subjects(ctx context.Context) ([]string, error)
	// AddSubject creates an empty subject; domain.ErrSubjectExists on duplicates.
	AddSubject(ctx context.Context, name string) error
	// AddQuestion appends to a subject's bank, creating the subject if absent.
	AddQuestion(ctx context.Context, subject string, q domain.Question) error
}

// SourceInvalidator is implemented by caching question sources that need an
// explicit flush after a write to the bank.
type SourceInvalidator interface {
	Invalidate(ctx context.Context, subject string) error
}

// ScoreLedger is the append-only record of completed attempts.
type ScoreLedger interface {
	Append(ctx context.Context, rec domain.ScoreRecord) error
	List(ctx context.Context) ([]domain.ScoreRecord, error)
	// Has reports whether any record exists for the student+subject pair.
	Has(ctx context.Context, student, subject string) (bool, error)
	// Delete removes all records for the pair; domain.ErrScoreNotFound if none.
	Delete(ctx context.Context, student, subject string) error
	// DeleteBySubject removes every record for a subject and returns the count.
	DeleteBySubject(ctx context.Context, subject string) (int, error)
}

// PermissionMap holds the retest flags keyed by student then subject.
// A missing entry reads as false.
type PermissionMap interface {
	Allowed(ctx context.Context, student, subject string) (bool, error)
	SetAllowed(ctx context.Context, student, subject string, allowed bool) error
	// Toggle flips the flag, creating the entry if absent, and returns the
	// new value. The flip must be atomic with respect to other writers.
	Toggle(ctx context.Context, student, subject string) (bool, error)
}

// UserDirectory is the static credential store. Accounts live in memory;
// durability and hashing are out of scope.
type UserDirectory interface {
	Authenticate(username, password string) (domain.Role, error)
	Add(user domain.User) error
}
