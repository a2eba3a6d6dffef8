package service

import "errors"

var (
	// ErrNotFound wraps missing tests, sessions or bank questions.
	ErrNotFound = errors.New("resource not found")
	// ErrValidation marks a request the caller can fix.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyGraded is returned when a session is submitted after it
	// has already been claimed for grading.
	ErrAlreadyGraded = errors.New("test session already graded")
	// ErrSessionNotActive is returned for writes against a session that
	// is no longer in progress.
	ErrSessionNotActive = errors.New("test session is not in progress")
)
