package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-admin-service/internal/app"
	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/infra/memory"
)

type recordingSource struct {
	bank        *memory.QuestionBank
	invalidated []string
}

func (s *recordingSource) QuestionSet(ctx context.Context, subject string) ([]domain.Question, error) {
	return s.bank.QuestionSet(ctx, subject)
}

func (s *recordingSource) Invalidate(_ context.Context, subject string) error {
	s.invalidated = append(s.invalidated, subject)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
}

func newTestService() (*app.Service, *memory.QuestionBank, *memory.ScoreLedger, *memory.PermissionMap) {
	bank := memory.NewQuestionBank()
	scores := memory.NewScoreLedger()
	perms := memory.NewPermissionMap()
	users := memory.NewUserDirectory([]domain.User{
		{Username: "teacher1", Password: "admin", Role: domain.RoleTeacher},
	})
	svc := app.NewServiceWithClock(bank, nil, scores, perms, users, fixedClock)
	return svc, bank, scores, perms
}

func TestSaveScoreStampsAndConsumes(t *testing.T) {
	ctx := context.Background()
	svc, _, scores, perms := newTestService()

	if err := perms.SetAllowed(ctx, "alice", "Math", true); err != nil {
		t.Fatalf("seed flag: %v", err)
	}

	rec := domain.ScoreRecord{Student: "alice", Subject: "Math", Score: 2, Total: 3, Percentage: 66.67}
	if err := svc.SaveScore(ctx, rec); err != nil {
		t.Fatalf("save score: %v", err)
	}

	list, err := scores.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 record, got %d err=%v", len(list), err)
	}
	if !list[0].RecordedAt.Equal(fixedClock()) {
		t.Fatalf("expected stamped timestamp, got %v", list[0].RecordedAt)
	}

	allowed, err := perms.Allowed(ctx, "alice", "Math")
	if err != nil || allowed {
		t.Fatalf("submission must revoke the flag, got allowed=%v err=%v", allowed, err)
	}
}

func TestSaveScoreRejectsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	bad := []domain.ScoreRecord{
		{Subject: "Math", Score: 1, Total: 1},
		{Student: "alice", Score: 1, Total: 1},
		{Student: "alice", Subject: "Math", Score: 2, Total: 1},
		{Student: "alice", Subject: "Math", Score: -1, Total: 1},
	}
	for i, rec := range bad {
		if err := svc.SaveScore(ctx, rec); err != app.ErrInvalidRecord {
			t.Fatalf("case %d: expected ErrInvalidRecord, got %v", i, err)
		}
	}
}

func TestAddQuestionValidatesAndInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	bank := memory.NewQuestionBank()
	source := &recordingSource{bank: bank}
	svc := app.NewService(bank, source, memory.NewScoreLedger(), memory.NewPermissionMap(), memory.NewUserDirectory(nil))

	bad := domain.Question{Prompt: "p", Options: []string{"a", "b"}, Answer: "c"}
	if err := svc.AddQuestion(ctx, "Math", bad); err != domain.ErrInvalidQuestion {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(source.invalidated) != 0 {
		t.Fatal("rejected question must not invalidate the cache")
	}

	good := domain.Question{Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, Answer: "4"}
	if err := svc.AddQuestion(ctx, "Math", good); err != nil {
		t.Fatalf("add question: %v", err)
	}
	if len(source.invalidated) != 1 || source.invalidated[0] != "Math" {
		t.Fatalf("expected cache invalidation for Math, got %v", source.invalidated)
	}

	subjects, err := svc.Subjects(ctx)
	if err != nil || len(subjects) != 1 || subjects[0] != "Math" {
		t.Fatalf("expected auto-created subject, got %v err=%v", subjects, err)
	}
}

func TestAddSubjectRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	if err := svc.AddSubject(ctx, "Math"); err != nil {
		t.Fatalf("add subject: %v", err)
	}
	if err := svc.AddSubject(ctx, "Math"); err != domain.ErrSubjectExists {
		t.Fatalf("expected ErrSubjectExists, got %v", err)
	}
}

func TestDeleteAndResetScores(t *testing.T) {
	ctx := context.Background()
	svc, _, scores, _ := newTestService()

	seed := []domain.ScoreRecord{
		{Student: "alice", Subject: "Math", Score: 1, Total: 2},
		{Student: "bob", Subject: "Math", Score: 2, Total: 2},
		{Student: "alice", Subject: "History", Score: 1, Total: 1},
	}
	for _, rec := range seed {
		if err := scores.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if err := svc.DeleteScore(ctx, "carol", "Math"); err != domain.ErrScoreNotFound {
		t.Fatalf("expected ErrScoreNotFound, got %v", err)
	}
	if err := svc.DeleteScore(ctx, "alice", "Math"); err != nil {
		t.Fatalf("delete score: %v", err)
	}

	dropped, err := svc.ResetSubjectScores(ctx, "Math")
	if err != nil || dropped != 1 {
		t.Fatalf("expected 1 dropped record, got %d err=%v", dropped, err)
	}

	remaining, err := svc.Scores(ctx)
	if err != nil || len(remaining) != 1 || remaining[0].Subject != "History" {
		t.Fatalf("unexpected remaining records: %v err=%v", remaining, err)
	}
}

func TestLoginAndAddUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	role, err := svc.Login("teacher1", "admin")
	if err != nil || role != domain.RoleTeacher {
		t.Fatalf("expected teacher login, got role=%q err=%v", role, err)
	}
	if _, err := svc.Login("teacher1", "wrong"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	newUser := domain.User{Username: "dana", Password: "pw", Role: domain.RoleStudent}
	if err := svc.AddUser(newUser); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if err := svc.AddUser(newUser); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if role, err := svc.Login("dana", "pw"); err != nil || role != domain.RoleStudent {
		t.Fatalf("expected student login, got role=%q err=%v", role, err)
	}
}
