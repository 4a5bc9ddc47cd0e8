package learning

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("action not available on the current screen")
	ErrNoAnswerSelected   = errors.New("choose an option before checking your answer")
	ErrAnswerLocked       = errors.New("answer already checked")
	ErrOptionOutOfRange   = errors.New("option index out of range")
	ErrNoPreviousQuestion = errors.New("already at the first question")
	ErrNoPreviousSection  = errors.New("already at the first section")
	ErrEmptyQuiz          = errors.New("quiz has no questions yet")
	ErrQuizCompleted      = errors.New("quiz already completed")
	ErrModuleNotLoaded    = errors.New("module detail is not loaded")
	ErrUnknownModule      = errors.New("module not found")
	ErrUnknownLesson      = errors.New("lesson not found in module")
	ErrUnknownQuiz        = errors.New("quiz not found in module")
	ErrUnknownChallenge   = errors.New("challenge not found")
	ErrStaleResult        = errors.New("fetch result superseded by later navigation")
)

// FetchError records a failed content fetch. The engine keeps the current
// screen and exposes the error until the next successful action.
type FetchError struct {
	Kind RequestKind
	ID   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
