package http

import (
	"math/rand"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/traingate/traingate/internal/auth"
	"github.com/traingate/traingate/internal/training"
)

type quizOption struct {
	Key  int    `json:"key"`
	Text string `json:"text"`
}

type quizQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Options []quizOption `json:"options"`
}

// GET /modules/{moduleID}/quiz — delivers the quiz for taking. The gate
// is checked up front; the quiz is created lazily on first access.
// Options are shuffled per request but keep their original keys, so the
// shuffle can never affect scoring. Correct indices are never exposed.
func GetQuizHandler(store training.Store, engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		moduleID := chi.URLParam(r, "moduleID")

		d, err := engine.CanAttemptQuiz(r.Context(), userID, moduleID)
		if err != nil {
			respondErr(w, err)
			return
		}
		if !d.Allowed {
			writeMessage(w, http.StatusForbidden, d.Reason)
			return
		}

		mod, err := store.GetModule(r.Context(), moduleID)
		if err != nil {
			respondErr(w, err)
			return
		}
		quiz, err := store.EnsureQuiz(r.Context(), moduleID)
		if err != nil {
			respondErr(w, err)
			return
		}
		questions, err := store.ListActiveQuestions(r.Context(), quiz.ID)
		if err != nil {
			respondErr(w, err)
			return
		}
		if len(questions) == 0 {
			writeMessage(w, http.StatusNotFound, "No active questions")
			return
		}

		out := make([]quizQuestion, 0, len(questions))
		for _, q := range questions {
			opts := make([]quizOption, len(q.Options))
			for i, text := range q.Options {
				opts[i] = quizOption{Key: i, Text: text}
			}
			rand.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
			out = append(out, quizQuestion{ID: q.ID, Text: q.Text, Options: opts})
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"module": map[string]any{"id": mod.ID, "title": mod.Title, "order": mod.SortOrder},
			"quiz": map[string]any{
				"pass_score":         quiz.PassScore,
				"time_limit_seconds": quiz.TimeLimitSeconds,
			},
			"questions": out,
		})
	}
}

// POST /attempts — submit a graded quiz attempt.
func SubmitAttemptHandler(store training.Store, evaluator *training.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		var req struct {
			ModuleID string `json:"module_id" validate:"required"`
			// Answers may be empty: unanswered questions still count
			// against the score.
			Answers []struct {
				QuestionID string `json:"question_id"`
				OptionKey  *int   `json:"option_key"`
			} `json:"answers"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		answers := make([]training.Answer, 0, len(req.Answers))
		for _, a := range req.Answers {
			answers = append(answers, training.Answer{QuestionID: a.QuestionID, OptionKey: a.OptionKey})
		}
		res, err := evaluator.Submit(r.Context(), u.ID, req.ModuleID, answers)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
