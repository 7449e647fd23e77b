package training

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// SubmitResult is the full outcome of one quiz submission.
type SubmitResult struct {
	Score             int  `json:"score"`
	Passed            bool `json:"passed"`
	AttemptNo         int  `json:"attempt_no"`
	AttemptsRemaining int  `json:"attempts_remaining"`
	TotalQuestions    int  `json:"total_questions"`
	TotalAnswered     int  `json:"total_answered"`
	TotalCorrect      int  `json:"total_correct"`
	TotalWrong        int  `json:"total_wrong"`
	PassScore         int  `json:"pass_score"`
}

// Evaluator scores quiz submissions and records attempts.
type Evaluator struct {
	store  Store
	engine *Engine
}

func NewEvaluator(store Store, engine *Engine) *Evaluator {
	return &Evaluator{store: store, engine: engine}
}

// Submit grades the answers against the module's active questions and
// records the attempt. Gating is re-checked here regardless of any earlier
// check at quiz-start time.
//
// Scoring: only active questions count, both in the denominator and for
// matching. A nil option is unanswered, not wrong, but still weighs on the
// denominator. Unknown question ids and out-of-range options simply fail
// to match.
func (ev *Evaluator) Submit(ctx context.Context, userID, moduleID string, answers []Answer) (SubmitResult, error) {
	decision, err := ev.engine.CanAttemptQuiz(ctx, userID, moduleID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !decision.Allowed {
		return SubmitResult{}, &GateClosedError{Reason: decision.Reason}
	}

	quiz, err := ev.store.GetQuizByModule(ctx, moduleID)
	if err != nil {
		return SubmitResult{}, err
	}
	questions, err := ev.store.ListActiveQuestions(ctx, quiz.ID)
	if err != nil {
		return SubmitResult{}, err
	}
	if len(questions) == 0 {
		return SubmitResult{}, ErrNoActiveQuestions
	}

	correctByID := make(map[string]int, len(questions))
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectIndex
	}

	correct := 0
	answered := 0
	for _, a := range answers {
		if a.QuestionID == "" {
			continue
		}
		correctIndex, known := correctByID[a.QuestionID]
		if !known {
			// inactive or foreign question: neither helps nor hurts
			continue
		}
		if a.OptionKey == nil {
			continue
		}
		answered++
		if *a.OptionKey == correctIndex {
			correct++
		}
	}

	total := len(questions)
	score := int(math.Round(float64(correct) / float64(total) * 100))
	passed := score >= quiz.PassScore

	attempt, err := ev.store.CreateAttempt(ctx, userID, quiz.ID, score, passed, answers)
	if err != nil {
		if errors.Is(err, ErrNoAttemptsLeft) {
			return SubmitResult{}, &GateClosedError{Reason: ReasonNoAttemptsLeft}
		}
		return SubmitResult{}, fmt.Errorf("record attempt: %w", err)
	}

	remaining := MaxAttempts - attempt.AttemptNo
	if remaining < 0 {
		remaining = 0
	}
	return SubmitResult{
		Score:             score,
		Passed:            passed,
		AttemptNo:         attempt.AttemptNo,
		AttemptsRemaining: remaining,
		TotalQuestions:    total,
		TotalAnswered:     answered,
		TotalCorrect:      correct,
		TotalWrong:        answered - correct,
		PassScore:         quiz.PassScore,
	}, nil
}
