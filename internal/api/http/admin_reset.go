package http

import (
	"errors"
	"net/http"

	"github.com/traingate/traingate/internal/cert"
	"github.com/traingate/traingate/internal/training"
)

// POST /admin/reset-attempts — wipe a user's attempts for one module, one
// main module, or everything. Any reset invalidates the user's
// certificates: eligibility they were derived from may no longer hold.
func ResetAttemptsHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID       string `json:"user_id" validate:"required"`
			ModuleID     string `json:"module_id"`
			MainModuleID *int64 `json:"main_module_id"`
			All          bool   `json:"all"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := store.GetUser(r.Context(), req.UserID); err != nil {
			respondErr(w, err)
			return
		}

		var quizIDs []string
		switch {
		case req.All:
			// nil quizIDs: delete everything for the user
		case req.ModuleID != "":
			quiz, err := store.GetQuizByModule(r.Context(), req.ModuleID)
			if err != nil {
				if errors.Is(err, training.ErrQuizNotFound) {
					writeMessage(w, http.StatusNotFound, "Quiz not found for module")
					return
				}
				respondErr(w, err)
				return
			}
			quizIDs = []string{quiz.ID}
		case req.MainModuleID != nil:
			assigned, err := store.ListAssignedModules(r.Context())
			if err != nil {
				respondErr(w, err)
				return
			}
			for _, m := range assigned {
				if m.MainModuleID != nil && *m.MainModuleID == *req.MainModuleID && m.Quiz != nil {
					quizIDs = append(quizIDs, m.Quiz.ID)
				}
			}
			if len(quizIDs) == 0 {
				writeMessage(w, http.StatusNotFound, "No quizzes found for main module")
				return
			}
		default:
			writeMessage(w, http.StatusBadRequest, "module_id, main_module_id or all required")
			return
		}

		if err := store.DeleteAttempts(r.Context(), req.UserID, quizIDs); err != nil {
			respondErr(w, err)
			return
		}
		if err := issuer.Invalidate(r.Context(), req.UserID); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
