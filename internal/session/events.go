package session

// EventType tags the events a quiz session emits to its subscribers.
type EventType string

const (
	// EventQuestion announces the question the student should now see.
	EventQuestion EventType = "question"
	// EventTick reports the remaining seconds for the current question.
	EventTick EventType = "tick"
	// EventAnswerResult reveals the outcome of a resolved question.
	EventAnswerResult EventType = "answerResult"
	// EventCompleted carries the final result of the session.
	EventCompleted EventType = "completed"
	// EventWarning is the advisory cheating signal. It never affects
	// score, timing, or state.
	EventWarning EventType = "warning"
)

// QuestionView is the renderer-facing form of a question: no answer included.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// AnswerOutcome reveals how a question was resolved, including the correct
// answer so the renderer can highlight it.
type AnswerOutcome struct {
	Index         int    `json:"index"`
	Selected      string `json:"selected,omitempty"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Score         int    `json:"score"`
	TimedOut      bool   `json:"timedOut"`
}

// Result is the final outcome of a completed session. NoQuestions marks the
// empty-subject case, where the percentage is not applicable.
type Result struct {
	Student     string  `json:"student"`
	Subject     string  `json:"subject"`
	Score       int     `json:"score"`
	Total       int     `json:"total"`
	Percentage  float64 `json:"percentage"`
	NoQuestions bool    `json:"noQuestions,omitempty"`
}

// Event is a state-change notification from the session controller.
// Exactly one payload field is set, matching Type.
type Event struct {
	Type      EventType      `json:"type"`
	Question  *QuestionView  `json:"question,omitempty"`
	Remaining int            `json:"remaining,omitempty"`
	Answer    *AnswerOutcome `json:"answer,omitempty"`
	Result    *Result        `json:"result,omitempty"`
	Warning   string         `json:"warning,omitempty"`
}
