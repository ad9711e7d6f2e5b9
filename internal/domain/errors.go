package domain

import "errors"

var (
	// ErrSessionClosed is returned by commands issued after the session was closed.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrCategoryNotFound indicates the question set could not be loaded.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrQuizNotActive is returned when a command needs a running quiz.
	ErrQuizNotActive = errors.New("quiz not active")
	// ErrNoQuiz is returned when no category has been started yet.
	ErrNoQuiz = errors.New("no quiz started")
	// ErrAnswerOutOfRange indicates an option number outside the current question.
	ErrAnswerOutOfRange = errors.New("answer out of range")
)
