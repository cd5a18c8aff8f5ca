package domain

import "time"

// Role classifies a user account.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Question is a single multiple-choice question. The JSON field names match
// the document format: "q" for the prompt, "answer" for the correct option's
// text. Questions are immutable once added to a subject.
type Question struct {
	Prompt  string   `json:"q"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// Validate checks the structural rules for a question: a non-empty prompt,
// 2-4 options, and an answer matching one option exactly.
func (q Question) Validate() error {
	if q.Prompt == "" {
		return ErrInvalidQuestion
	}
	if len(q.Options) < 2 || len(q.Options) > 4 {
		return ErrInvalidQuestion
	}
	for _, opt := range q.Options {
		if opt == q.Answer {
			return nil
		}
	}
	return ErrInvalidQuestion
}

// ScoreRecord is a durable record of one completed quiz attempt.
// Records are append-only; they are removed only by teacher actions.
type ScoreRecord struct {
	Student    string    `json:"username"`
	Subject    string    `json:"subject"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage float64   `json:"percentage"`
	RecordedAt time.Time `json:"date"`
}

// User is a login account. Credentials are static and unhashed; hardening
// them is out of scope for this service.
type User struct {
	Username string
	Password string
	Role     Role
}
