package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUser is returned when registering a username that already exists.
	ErrDuplicateUser = errors.New("username already in use")
	// ErrDuplicateQuestion is returned when a question with identical text already exists.
	ErrDuplicateQuestion = errors.New("question already exists")
	// ErrUnknownUser is returned when logging in with a username that is not registered.
	ErrUnknownUser = errors.New("invalid username")
	// ErrInvalidCredential is returned when the password does not match the stored hash.
	ErrInvalidCredential = errors.New("incorrect password")
	// ErrNotFound indicates a missing question or proposal.
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound is returned when a session id has no stored state.
	ErrSessionNotFound = errors.New("session not found")
	// ErrQuizNotStarted is returned when a quiz step is requested before Start.
	ErrQuizNotStarted = errors.New("quiz not started")
	// ErrQuizFinished is returned when asking for a question after the last one.
	ErrQuizFinished = errors.New("quiz finished")
	// ErrQuizInProgress is returned when a summary is requested before the last answer.
	ErrQuizInProgress = errors.New("quiz still in progress")
	// ErrAlreadyRecorded is returned on a second high score submission for one quiz.
	ErrAlreadyRecorded = errors.New("score already recorded")
	// ErrNotEligible is returned when the final score does not reach the leaderboard.
	ErrNotEligible = errors.New("score not eligible for the leaderboard")
)

// ValidationError reports user input that cannot be accepted as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsUserError reports whether err came from user input and can be shown on the form
// that caused it. Anything else is treated as a storage or internal failure.
func IsUserError(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrDuplicateUser),
		errors.Is(err, ErrDuplicateQuestion),
		errors.Is(err, ErrUnknownUser),
		errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrAlreadyRecorded),
		errors.Is(err, ErrNotEligible):
		return true
	}
	return false
}
