package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolUnavailable is returned when a question pool cannot be loaded or is malformed.
	ErrPoolUnavailable = errors.New("question pool unavailable")
	// ErrInitialization indicates a session could not present its first question.
	ErrInitialization = errors.New("quiz session could not be initialized")
	// ErrPersistence wraps failures of the history store while finishing a session.
	ErrPersistence = errors.New("quiz history could not be saved")
	// ErrHistoryNotFound is returned when a history record does not exist.
	ErrHistoryNotFound = errors.New("quiz history not found")
	// ErrInvalidHistory is returned when a history record fails validation.
	ErrInvalidHistory = errors.New("invalid quiz history")
	// ErrSessionNotFound is returned when a quiz session is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionCompleted is returned when answering a finished session.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrSessionNotCompleted is returned when finishing a session still in progress.
	ErrSessionNotCompleted = errors.New("quiz session not completed")
	// ErrSessionBusy is returned while another request is being processed for the session.
	ErrSessionBusy = errors.New("quiz session busy")
	// ErrNoActiveQuestion indicates an answer arrived before the session started.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrInvalidOption indicates the selected option is not one of the question's options.
	ErrInvalidOption = errors.New("option not found")
	// ErrUserNotFound is returned when a user lookup fails.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict is returned when another account already uses the email.
	ErrUserConflict = errors.New("user with this email already exists")
	// ErrInvalidUser is returned when required profile fields are missing.
	ErrInvalidUser = errors.New("missing user data")
)

// LoadError reports which pool failed to load.
type LoadError struct {
	Difficulty Difficulty
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s pool: %v", e.Difficulty, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrPoolUnavailable }
