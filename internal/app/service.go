package app

import (
	"context"
	"errors"
	"log"
	"time"

	"quiz-admin-service/internal/domain"
)

// ErrInvalidRecord rejects malformed score submissions.
var ErrInvalidRecord = errors.New("invalid score record")

// Service contains the teacher- and student-facing use cases. It composes
// the permission gate with the repositories; storage adapters stay behind
// the interfaces so the logic is testable with in-memory fakes.
type Service struct {
	bank   QuestionBank
	source QuestionSource
	gate   *Gate
	scores ScoreLedger
	perms  PermissionMap
	users  UserDirectory
	now    func() time.Time
}

// NewService wires the use cases. source is the (possibly cached) read path
// for question sets; pass nil to read straight from the bank.
func NewService(bank QuestionBank, source QuestionSource, scores ScoreLedger, perms PermissionMap, users UserDirectory) *Service {
	return newServiceWithClock(bank, source, scores, perms, users, time.Now)
}

// NewServiceWithClock is test-only for deterministic timestamps.
func NewServiceWithClock(bank QuestionBank, source QuestionSource, scores ScoreLedger, perms PermissionMap, users UserDirectory, now func() time.Time) *Service {
	return newServiceWithClock(bank, source, scores, perms, users, now)
}

func newServiceWithClock(bank QuestionBank, source QuestionSource, scores ScoreLedger, perms PermissionMap, users UserDirectory, now func() time.Time) *Service {
	if source == nil {
		source = bank
	}
	return &Service{
		bank:   bank,
		source: source,
		gate:   NewGate(source, scores, perms),
		scores: scores,
		perms:  perms,
		users:  users,
		now:    now,
	}
}

// Login checks credentials and returns the account role.
func (s *Service) Login(username, password string) (domain.Role, error) {
	return s.users.Authenticate(username, password)
}

// AddUser registers a new account; domain.ErrUserExists on duplicates.
func (s *Service) AddUser(user domain.User) error {
	return s.users.Add(user)
}

// Subjects lists the known subject names.
func (s *Service) Subjects(ctx context.Context) ([]string, error) {
	return s.bank.Subjects(ctx)
}

// AddSubject creates an empty subject.
func (s *Service) AddSubject(ctx context.Context, name string) error {
	return s.bank.AddSubject(ctx, name)
}

// AddQuestion validates and appends a question, creating the subject if it
// does not exist yet, and flushes the cached question set for the subject.
func (s *Service) AddQuestion(ctx context.Context, subject string, q domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if err := s.bank.AddQuestion(ctx, subject, q); err != nil {
		return err
	}
	s.invalidate(ctx, subject)
	return nil
}

// QuestionsFor runs the permission gate and serves the question snapshot.
func (s *Service) QuestionsFor(ctx context.Context, student, subject string) ([]domain.Question, error) {
	return s.gate.QuestionsFor(ctx, student, subject)
}

// TogglePermission flips the retest flag and returns the new value.
func (s *Service) TogglePermission(ctx context.Context, student, subject string) (bool, error) {
	return s.gate.Toggle(ctx, student, subject)
}

// SaveScore appends a score record and consumes any outstanding retest
// grant for the pair. The record timestamp is stamped here. A failure to
// revoke the flag is logged but does not fail the submission.
func (s *Service) SaveScore(ctx context.Context, rec domain.ScoreRecord) error {
	if rec.Student == "" || rec.Subject == "" || rec.Total < 0 || rec.Score < 0 || rec.Score > rec.Total {
		return ErrInvalidRecord
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = s.now()
	}
	if err := s.scores.Append(ctx, rec); err != nil {
		return err
	}
	if err := s.gate.ConsumeOnSubmit(ctx, rec.Student, rec.Subject); err != nil {
		log.Printf("revoke retest flag for %s/%s failed: %v", rec.Student, rec.Subject, err)
	}
	return nil
}

// Scores lists every score record in insertion order.
func (s *Service) Scores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.scores.List(ctx)
}

// DeleteScore removes the records for one student+subject pair.
func (s *Service) DeleteScore(ctx context.Context, student, subject string) error {
	return s.scores.Delete(ctx, student, subject)
}

// ResetSubjectScores removes every record for a subject and returns how many
// were dropped.
func (s *Service) ResetSubjectScores(ctx context.Context, subject string) (int, error) {
	return s.scores.DeleteBySubject(ctx, subject)
}

func (s *Service) invalidate(ctx context.Context, subject string) {
	inv, ok := s.source.(SourceInvalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, subject); err != nil {
		log.Printf("invalidate question cache for %q failed: %v", subject, err)
	}
}
