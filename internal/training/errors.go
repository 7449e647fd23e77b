package training

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrModuleNotFound    = errors.New("module not found")
	ErrMainModuleMissing = errors.New("main module not found")
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrNoActiveQuestions = errors.New("no active questions")
	ErrNoAttemptsLeft    = errors.New("no attempts left")
	ErrEmailTaken        = errors.New("email already registered")
)

// GateClosedError rejects a quiz action blocked by sequencing. Reason is a
// short user-facing string ("Module is locked", "Already passed", ...).
type GateClosedError struct {
	Reason string
}

func (e *GateClosedError) Error() string { return e.Reason }
