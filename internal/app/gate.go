package app

import (
	"context"

	"quiz-admin-service/internal/domain"
)

// Gate decides whether a student may be served a subject's question set.
// First attempt is always allowed; after that the student needs an explicit
// teacher-granted flag, and the flag is consumed by the submission that
// follows: each grant allows exactly one retest.
type Gate struct {
	source QuestionSource
	scores ScoreLedger
	perms  PermissionMap
}

func NewGate(source QuestionSource, scores ScoreLedger, perms PermissionMap) *Gate {
	return &Gate{source: source, scores: scores, perms: perms}
}

// QuestionsFor serves the question snapshot or denies with
// domain.ErrRetestNotAllowed. An unattempted pair always passes; a subject
// with no questions yields an empty set.
func (g *Gate) QuestionsFor(ctx context.Context, student, subject string) ([]domain.Question, error) {
	attempted, err := g.scores.Has(ctx, student, subject)
	if err != nil {
		return nil, err
	}
	if attempted {
		allowed, err := g.perms.Allowed(ctx, student, subject)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, domain.ErrRetestNotAllowed
		}
	}
	return g.source.QuestionSet(ctx, subject)
}

// Toggle flips the retest flag and returns the new value. This is the
// teacher-facing control; it can grant or revoke ahead of time.
func (g *Gate) Toggle(ctx context.Context, student, subject string) (bool, error) {
	return g.perms.Toggle(ctx, student, subject)
}

// ConsumeOnSubmit revokes a granted flag as part of score submission. A flag
// that is already false is left alone.
func (g *Gate) ConsumeOnSubmit(ctx context.Context, student, subject string) error {
	allowed, err := g.perms.Allowed(ctx, student, subject)
	if err != nil {
		return err
	}
	if !allowed {
		return nil
	}
	return g.perms.SetAllowed(ctx, student, subject, false)
}
