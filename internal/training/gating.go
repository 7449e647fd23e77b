package training

import (
	"context"
	"errors"
)

// Decision is the outcome of a quiz gating check. Reason is set only when
// the attempt is not allowed and is surfaced verbatim to the client.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

const (
	ReasonModuleNotFound = "Module not found"
	ReasonNotInSequence  = "Module not in sequence"
	ReasonLocked         = "Module is locked"
	ReasonAlreadyPassed  = "Already passed"
	ReasonNoAttemptsLeft = "No attempts left"
)

// IsModuleAccessible reports whether the user may view the module's video.
// PENDING and PASSED are viewable; so is FAILED, deliberately: exhausting
// quiz attempts must not take the instructional content away. Only LOCKED
// modules are hidden.
func (e *Engine) IsModuleAccessible(ctx context.Context, userID, moduleID string) (bool, error) {
	status, err := e.moduleStatus(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return false, nil
		}
		var gc *GateClosedError
		if errors.As(err, &gc) {
			return false, nil
		}
		return false, err
	}
	return status != StatusLocked, nil
}

// CanAttemptQuiz is the single gate for quiz starts and submissions. It is
// re-evaluated at submission time; the check at quiz-start time is never
// trusted across the time-of-check/time-of-use gap.
func (e *Engine) CanAttemptQuiz(ctx context.Context, userID, moduleID string) (Decision, error) {
	status, err := e.moduleStatus(ctx, userID, moduleID)
	if err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return Decision{Allowed: false, Reason: ReasonModuleNotFound}, nil
		}
		var gc *GateClosedError
		if errors.As(err, &gc) {
			return Decision{Allowed: false, Reason: gc.Reason}, nil
		}
		return Decision{}, err
	}
	switch status {
	case StatusLocked:
		return Decision{Allowed: false, Reason: ReasonLocked}, nil
	case StatusPassed:
		return Decision{Allowed: false, Reason: ReasonAlreadyPassed}, nil
	case StatusFailed:
		return Decision{Allowed: false, Reason: ReasonNoAttemptsLeft}, nil
	default:
		return Decision{Allowed: true}, nil
	}
}

// moduleStatus resolves one module's status for the user, honoring main
// module sequencing when the module is assigned and falling back to the
// legacy flat sequence otherwise.
func (e *Engine) moduleStatus(ctx context.Context, userID, moduleID string) (ModuleStatus, error) {
	mod, err := e.store.GetModule(ctx, moduleID)
	if err != nil {
		return "", err
	}
	if mod.MainModuleID != nil {
		tree, err := e.MainProgress(ctx, userID)
		if err != nil {
			return "", err
		}
		for _, g := range tree {
			for _, sub := range g.SubModules {
				if sub.ID == moduleID {
					return sub.Status, nil
				}
			}
		}
		return "", &GateClosedError{Reason: ReasonNotInSequence}
	}
	progress, err := e.LegacyProgress(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, p := range progress {
		if p.ID == moduleID {
			return p.Status, nil
		}
	}
	return "", ErrModuleNotFound
}
