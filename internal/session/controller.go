package session

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"quiz-admin-service/internal/domain"
)

// State is the lifecycle phase of a quiz session.
type State int

const (
	StateIdle State = iota
	StateAwaitingQuestions
	StateInProgress
	StateCompleted
)

var (
	// ErrSessionActive is returned when Start is called on a session that
	// has already started.
	ErrSessionActive = errors.New("quiz session already started")
	// ErrNotInProgress is returned when an answer arrives outside an
	// in-progress session.
	ErrNotInProgress = errors.New("no question awaiting an answer")
)

// QuestionFetcher hands out the question snapshot for a student+subject pair.
// The permission gate sits behind this interface; a denial comes back as an
// error whose message is shown to the student verbatim.
type QuestionFetcher interface {
	QuestionsFor(ctx context.Context, student, subject string) ([]domain.Question, error)
}

// ScoreSink receives the score record of a completed session.
type ScoreSink interface {
	SaveScore(ctx context.Context, rec domain.ScoreRecord) error
}

// Config carries the session timing knobs.
type Config struct {
	// QuestionSeconds is the per-question countdown. Defaults to 15.
	QuestionSeconds int
	// TickInterval is the wall-clock length of one countdown second.
	// Defaults to time.Second; tests shrink it.
	TickInterval time.Duration
	// RevealDelay is the pause after an answer so the renderer can show
	// the correct/incorrect highlight before the next question. Zero
	// advances immediately. Timeouts always advance without delay.
	RevealDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = 15
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	return c
}

// Controller owns one quiz attempt: the question snapshot, the current
// index, the score accumulator, and the per-question countdown. It is a
// headless state machine; renderers subscribe to its event stream.
//
// Invariants: the current index increases by exactly 1 per resolved
// question, and the score is non-decreasing within a session. A question
// resolves at most once -- whichever of answer or deadline fires first wins,
// the other is a no-op.
type Controller struct {
	fetcher QuestionFetcher
	sink    ScoreSink
	cfg     Config

	mu          sync.Mutex
	state       State
	student     string
	subject     string
	questions   []domain.Question
	current     int
	score       int
	resolved    bool
	timer       *Countdown
	subscribers map[chan Event]struct{}
}

func New(fetcher QuestionFetcher, sink ScoreSink, cfg Config) *Controller {
	return &Controller{
		fetcher:     fetcher,
		sink:        sink,
		cfg:         cfg.withDefaults(),
		subscribers: make(map[chan Event]struct{}),
	}
}

// State returns the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InProgress reports whether a quiz is actively being taken.
func (c *Controller) InProgress() bool {
	return c.State() == StateInProgress
}

// Score returns the accumulated score so far.
func (c *Controller) Score() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.score
}

// Subscribe returns a channel of session events plus a cancel function.
// The caller must invoke cancel to avoid leaks.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Start fetches the question snapshot through the permission gate and moves
// the session into InProgress. On denial the session returns to Idle and the
// denial reason is returned to the caller. An empty question set completes
// the session immediately: score 0/0, no timer, no evaluator, and no score
// record emitted -- nothing was asked, so the attempt is not consumed.
func (c *Controller) Start(ctx context.Context, subject, student string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StateAwaitingQuestions
	c.subject = subject
	c.student = student
	c.mu.Unlock()

	questions, err := c.fetcher.QuestionsFor(ctx, student, subject)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdle
		return err
	}
	c.questions = questions
	c.current = 0
	c.score = 0
	c.state = StateInProgress
	if len(questions) == 0 {
		c.finishLocked()
		return nil
	}
	c.presentLocked()
	return nil
}

// Answer resolves the current question with the student's selection. Only
// valid while in progress; a second resolution for the same question is a
// no-op.
func (c *Controller) Answer(selected string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return ErrNotInProgress
	}
	if c.resolved {
		return nil
	}
	c.resolved = true
	if c.timer != nil {
		c.timer.Cancel()
	}

	question := c.questions[c.current]
	correct := domain.Evaluate(selected, question.Answer)
	if correct {
		c.score++
	}
	c.broadcastLocked(Event{Type: EventAnswerResult, Answer: &AnswerOutcome{
		Index:         c.current,
		Selected:      selected,
		Correct:       correct,
		CorrectAnswer: question.Answer,
		Score:         c.score,
	}})

	index := c.current
	if c.cfg.RevealDelay > 0 {
		time.AfterFunc(c.cfg.RevealDelay, func() { c.advance(index) })
		return nil
	}
	c.advanceLocked(index)
	return nil
}

// Reset abandons or acknowledges the session and returns it to Idle so a new
// quiz can start.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Cancel()
		c.timer = nil
	}
	c.state = StateIdle
	c.questions = nil
	c.current = 0
	c.score = 0
	c.resolved = false
}

// presentLocked shows the current question and restarts the countdown.
func (c *Controller) presentLocked() {
	c.resolved = false
	if c.timer != nil {
		c.timer.Cancel()
	}
	index := c.current
	c.broadcastLocked(Event{Type: EventQuestion, Question: &QuestionView{
		Index:   index,
		Total:   len(c.questions),
		Prompt:  c.questions[index].Prompt,
		Options: c.questions[index].Options,
	}})
	c.timer = StartCountdown(c.cfg.QuestionSeconds, c.cfg.TickInterval,
		func(remaining int) { c.tick(index, remaining) },
		func() { c.timeout(index) },
	)
}

func (c *Controller) tick(index, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress || c.current != index {
		return
	}
	c.broadcastLocked(Event{Type: EventTick, Remaining: remaining})
}

// timeout resolves the current question as unanswered: score unchanged,
// immediate advance. A question already resolved by an answer is left alone.
func (c *Controller) timeout(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress || c.current != index || c.resolved {
		return
	}
	c.resolved = true
	c.broadcastLocked(Event{Type: EventAnswerResult, Answer: &AnswerOutcome{
		Index:         index,
		Correct:       false,
		CorrectAnswer: c.questions[index].Answer,
		Score:         c.score,
		TimedOut:      true,
	}})
	c.advanceLocked(index)
}

func (c *Controller) advance(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceLocked(index)
}

// advanceLocked moves past a resolved question. The index guard makes a
// stale advance (from a cancelled timer or a late reveal delay) a no-op.
func (c *Controller) advanceLocked(index int) {
	if c.state != StateInProgress || c.current != index || !c.resolved {
		return
	}
	c.current++
	if c.current >= len(c.questions) {
		c.finishLocked()
		return
	}
	c.presentLocked()
}

// finishLocked completes the session, publishes the result, and emits the
// score record in the background. A persistence failure is logged and does
// not block the student from seeing their result.
func (c *Controller) finishLocked() {
	c.state = StateCompleted
	if c.timer != nil {
		c.timer.Cancel()
		c.timer = nil
	}

	total := len(c.questions)
	result := Result{
		Student: c.student,
		Subject: c.subject,
		Score:   c.score,
		Total:   total,
	}
	if total == 0 {
		result.NoQuestions = true
	} else {
		result.Percentage = roundPercentage(c.score, total)
	}
	c.broadcastLocked(Event{Type: EventCompleted, Result: &result})

	if result.NoQuestions || c.sink == nil {
		return
	}
	rec := domain.ScoreRecord{
		Student:    result.Student,
		Subject:    result.Subject,
		Score:      result.Score,
		Total:      result.Total,
		Percentage: result.Percentage,
	}
	go func() {
		if err := c.sink.SaveScore(context.Background(), rec); err != nil {
			log.Printf("save score for %s/%s failed: %v", rec.Student, rec.Subject, err)
		}
	}()
}

// warn raises an advisory cheating warning if the quiz is in progress.
func (c *Controller) warn(sig Signal) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateInProgress {
		return false
	}
	c.broadcastLocked(Event{Type: EventWarning, Warning: string(sig)})
	return true
}

func (c *Controller) broadcastLocked(ev Event) {
	for ch := range c.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event rather than block the state machine
			// on a slow renderer.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// roundPercentage computes score/total as a percentage rounded to 2 decimal
// places.
func roundPercentage(score, total int) float64 {
	return math.Round(float64(score)/float64(total)*100*100) / 100
}
