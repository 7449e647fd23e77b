package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/traingate/traingate/internal/auth"
	"github.com/traingate/traingate/internal/csvimport"
	"github.com/traingate/traingate/internal/training"
)

// GET /admin/modules/{moduleID}/quiz — full quiz view including inactive
// questions and answer keys, for curation.
func AdminGetQuizHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := store.EnsureQuiz(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		questions, err := store.ListQuestions(r.Context(), quiz.ID)
		if err != nil {
			respondErr(w, err)
			return
		}
		if questions == nil {
			questions = []training.Question{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"quiz": quiz, "questions": questions})
	}
}

// PUT /admin/quizzes/{quizID} — adjust the pass threshold.
func UpdateQuizHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PassScore        int  `json:"pass_score" validate:"required,min=1,max=100"`
			TimeLimitSeconds *int `json:"time_limit_seconds"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		err := store.UpdateQuiz(r.Context(), training.Quiz{
			ID:               chi.URLParam(r, "quizID"),
			PassScore:        req.PassScore,
			TimeLimitSeconds: req.TimeLimitSeconds,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type questionPayload struct {
	Text         string   `json:"text" validate:"required"`
	Options      []string `json:"options" validate:"required,min=2"`
	CorrectIndex int      `json:"correct_index" validate:"min=0"`
	Active       *bool    `json:"active"`
}

// POST /admin/modules/{moduleID}/questions
func CreateQuestionHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quiz, err := store.EnsureQuiz(r.Context(), chi.URLParam(r, "moduleID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		var req questionPayload
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.CorrectIndex >= len(req.Options) {
			writeMessage(w, http.StatusBadRequest, "correct_index out of range")
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		q := training.Question{
			ID:           uuid.NewString(),
			QuizID:       quiz.ID,
			Text:         req.Text,
			Options:      req.Options,
			CorrectIndex: req.CorrectIndex,
			Active:       active,
		}
		if err := store.CreateQuestion(r.Context(), q); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	}
}

// PUT /admin/questions/{questionID}
func UpdateQuestionHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionPayload
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.CorrectIndex >= len(req.Options) {
			writeMessage(w, http.StatusBadRequest, "correct_index out of range")
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		err := store.UpdateQuestion(r.Context(), training.Question{
			ID:           chi.URLParam(r, "questionID"),
			Text:         req.Text,
			Options:      req.Options,
			CorrectIndex: req.CorrectIndex,
			Active:       active,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// DELETE /admin/questions/{questionID}
func DeleteQuestionHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// POST /admin/questions/import — multipart CSV upload.
func ImportQuestionsHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			writeMessage(w, http.StatusBadRequest, "Expected multipart/form-data")
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "CSV file required")
			return
		}
		defer f.Close()
		res, err := csvimport.Import(r.Context(), store, auth.SubjectFromContext(r.Context()), hdr.Filename, f)
		if err != nil {
			respondErr(w, err)
			return
		}
		if res.Total == 0 {
			writeMessage(w, http.StatusBadRequest, "Empty CSV")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
