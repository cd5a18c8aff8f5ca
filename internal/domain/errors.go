package domain

import "errors"

var (
	// ErrRetestNotAllowed is the permission gate's denial. The message is
	// surfaced verbatim to students.
	ErrRetestNotAllowed = errors.New("no permission to take this retest")
	// ErrSubjectExists is returned when creating a subject that already exists.
	ErrSubjectExists = errors.New("subject already exists")
	// ErrUserExists is returned when registering a duplicate username.
	ErrUserExists = errors.New("user already exists")
	// ErrScoreNotFound indicates no score record matches the given student and subject.
	ErrScoreNotFound = errors.New("no score found for this student and subject")
	// ErrInvalidQuestion indicates a question failing structural validation.
	ErrInvalidQuestion = errors.New("question must have 2-4 options and an answer matching one of them")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
