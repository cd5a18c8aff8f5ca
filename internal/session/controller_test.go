package session_test

import (
	"context"
	"testing"
	"time"

	"quiz-admin-service/internal/domain"
	"quiz-admin-service/internal/session"
)

type fetcherFunc func(ctx context.Context, student, subject string) ([]domain.Question, error)

func (f fetcherFunc) QuestionsFor(ctx context.Context, student, subject string) ([]domain.Question, error) {
	return f(ctx, student, subject)
}

type captureSink struct {
	records chan domain.ScoreRecord
}

func newCaptureSink() *captureSink {
	return &captureSink{records: make(chan domain.ScoreRecord, 4)}
}

func (s *captureSink) SaveScore(_ context.Context, rec domain.ScoreRecord) error {
	s.records <- rec
	return nil
}

func grantFetcher(questions []domain.Question) fetcherFunc {
	return func(context.Context, string, string) ([]domain.Question, error) {
		return questions, nil
	}
}

func twoQuestions() []domain.Question {
	return []domain.Question{
		{Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, Answer: "4"},
		{Prompt: "Capital of France?", Options: []string{"Paris", "Rome"}, Answer: "Paris"},
	}
}

// slowConfig keeps the countdown far away so only answers drive the session.
func slowConfig() session.Config {
	return session.Config{QuestionSeconds: 600, TickInterval: time.Second}
}

func waitEvent(t *testing.T, ch <-chan session.Event, typ session.EventType) session.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", typ)
		}
	}
}

func TestAnswerFlowScoresAndCompletes(t *testing.T) {
	sink := newCaptureSink()
	ctrl := session.New(grantFetcher(twoQuestions()), sink, slowConfig())
	events, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	q := waitEvent(t, events, session.EventQuestion)
	if q.Question.Index != 0 || q.Question.Total != 2 {
		t.Fatalf("unexpected first question view: %+v", q.Question)
	}

	if err := ctrl.Answer("4"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	res := waitEvent(t, events, session.EventAnswerResult)
	if !res.Answer.Correct || res.Answer.Score != 1 {
		t.Fatalf("expected correct answer with score 1, got %+v", res.Answer)
	}

	q = waitEvent(t, events, session.EventQuestion)
	if q.Question.Index != 1 {
		t.Fatalf("expected index 1, got %d", q.Question.Index)
	}

	if err := ctrl.Answer("Rome"); err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	res = waitEvent(t, events, session.EventAnswerResult)
	if res.Answer.Correct || res.Answer.CorrectAnswer != "Paris" {
		t.Fatalf("expected incorrect answer revealing Paris, got %+v", res.Answer)
	}

	done := waitEvent(t, events, session.EventCompleted)
	if done.Result.Score != 1 || done.Result.Total != 2 || done.Result.Percentage != 50 {
		t.Fatalf("unexpected result: %+v", done.Result)
	}
	if ctrl.State() != session.StateCompleted {
		t.Fatalf("expected completed state, got %v", ctrl.State())
	}

	select {
	case rec := <-sink.records:
		if rec.Student != "alice" || rec.Subject != "Math" || rec.Score != 1 || rec.Total != 2 || rec.Percentage != 50 {
			t.Fatalf("unexpected score record: %+v", rec)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("score record was not emitted")
	}
}

func TestPercentageRoundsToTwoDecimals(t *testing.T) {
	questions := []domain.Question{
		{Prompt: "a", Options: []string{"x", "y"}, Answer: "x"},
		{Prompt: "b", Options: []string{"x", "y"}, Answer: "x"},
		{Prompt: "c", Options: []string{"x", "y"}, Answer: "x"},
	}
	sink := newCaptureSink()
	ctrl := session.New(grantFetcher(questions), sink, slowConfig())
	events, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	answers := []string{"x", "y", "y"} // 1 of 3 = 33.33
	for _, a := range answers {
		waitEvent(t, events, session.EventQuestion)
		if err := ctrl.Answer(a); err != nil {
			t.Fatalf("answer failed: %v", err)
		}
	}
	done := waitEvent(t, events, session.EventCompleted)
	if done.Result.Percentage != 33.33 {
		t.Fatalf("expected 33.33, got %v", done.Result.Percentage)
	}
}

func TestTimeoutCountsAsIncorrect(t *testing.T) {
	sink := newCaptureSink()
	cfg := session.Config{QuestionSeconds: 1, TickInterval: time.Millisecond}
	ctrl := session.New(grantFetcher(twoQuestions()[:1]), sink, cfg)
	events, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	res := waitEvent(t, events, session.EventAnswerResult)
	if !res.Answer.TimedOut || res.Answer.Correct || res.Answer.Score != 0 {
		t.Fatalf("expected timed-out incorrect resolution, got %+v", res.Answer)
	}
	done := waitEvent(t, events, session.EventCompleted)
	if done.Result.Score != 0 || done.Result.Total != 1 {
		t.Fatalf("unexpected result after timeout: %+v", done.Result)
	}
}

func TestSecondResolutionIsNoop(t *testing.T) {
	sink := newCaptureSink()
	cfg := slowConfig()
	cfg.RevealDelay = 50 * time.Millisecond
	ctrl := session.New(grantFetcher(twoQuestions()[:1]), sink, cfg)
	events, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitEvent(t, events, session.EventQuestion)

	if err := ctrl.Answer("4"); err != nil {
		t.Fatalf("first answer failed: %v", err)
	}
	// Within the reveal delay the question is resolved but not advanced;
	// a second answer must not score again.
	if err := ctrl.Answer("4"); err != nil {
		t.Fatalf("second answer should be a silent no-op, got %v", err)
	}

	done := waitEvent(t, events, session.EventCompleted)
	if done.Result.Score != 1 {
		t.Fatalf("double resolution changed the score: %+v", done.Result)
	}
}

func TestDenialSurfacesReasonAndReturnsToIdle(t *testing.T) {
	fetcher := fetcherFunc(func(context.Context, string, string) ([]domain.Question, error) {
		return nil, domain.ErrRetestNotAllowed
	})
	ctrl := session.New(fetcher, newCaptureSink(), slowConfig())

	err := ctrl.Start(context.Background(), "Math", "alice")
	if err != domain.ErrRetestNotAllowed {
		t.Fatalf("expected denial error verbatim, got %v", err)
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("expected idle after denial, got %v", ctrl.State())
	}
}

func TestZeroQuestionsCompletesWithoutRecord(t *testing.T) {
	sink := newCaptureSink()
	ctrl := session.New(grantFetcher(nil), sink, slowConfig())
	events, cancel := ctrl.Subscribe()
	defer cancel()

	if err := ctrl.Start(context.Background(), "Empty", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := waitEvent(t, events, session.EventCompleted)
	if !done.Result.NoQuestions || done.Result.Score != 0 || done.Result.Total != 0 {
		t.Fatalf("unexpected zero-question result: %+v", done.Result)
	}
	if ctrl.State() != session.StateCompleted {
		t.Fatalf("expected completed state, got %v", ctrl.State())
	}

	select {
	case rec := <-sink.records:
		t.Fatalf("zero-question session must not emit a record, got %+v", rec)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStartWhileActiveFails(t *testing.T) {
	ctrl := session.New(grantFetcher(twoQuestions()), newCaptureSink(), slowConfig())
	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := ctrl.Start(context.Background(), "Math", "alice"); err != session.ErrSessionActive {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	ctrl.Reset()
	if ctrl.State() != session.StateIdle {
		t.Fatal("reset must return the session to idle")
	}
	if err := ctrl.Start(context.Background(), "Math", "alice"); err != nil {
		t.Fatalf("start after reset failed: %v", err)
	}
}

func TestAnswerOutsideInProgress(t *testing.T) {
	ctrl := session.New(grantFetcher(nil), newCaptureSink(), slowConfig())
	if err := ctrl.Answer("4"); err != session.ErrNotInProgress {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}
