package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/traingate/traingate/internal/auth"
	"github.com/traingate/traingate/internal/training"
)

// GET /progress — the full per-user progress view. Grouped mode returns
// the main module tree; with no main modules configured the legacy flat
// sequence is returned instead.
func ProgressHandler(engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		legacy, err := engine.LegacyMode(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		if legacy {
			items, err := engine.LegacyProgress(r.Context(), userID)
			if err != nil {
				respondErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"legacy_mode": true, "modules": items})
			return
		}
		tree, err := engine.MainProgress(r.Context(), userID)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"legacy_mode": false, "main_modules": tree})
	}
}

// GET /main-modules/{id}/progress — a single group's summary for "what's
// next" prompts.
func MainModuleProgressHandler(engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		id, err := strconv.ParseInt(chi.URLParam(r, "mainModuleID"), 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		tree, err := engine.MainProgress(r.Context(), userID)
		if err != nil {
			respondErr(w, err)
			return
		}
		for _, g := range tree {
			if g.ID != id {
				continue
			}
			var next any
			if g.NextOpenSubModuleID != "" {
				next = map[string]string{"id": g.NextOpenSubModuleID, "title": g.NextOpenSubModuleTitle}
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"id":                g.ID,
				"title":             g.Title,
				"completed":         g.Completed,
				"dashboard_average": g.DashboardAverage,
				"next_submodule":    next,
			})
			return
		}
		writeMessage(w, http.StatusNotFound, "Main module not found")
	}
}

// GET /modules/{moduleID}/access — gate for video playback routes.
func ModuleAccessHandler(engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		ok, err := engine.IsModuleAccessible(r.Context(), userID, chi.URLParam(r, "moduleID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"accessible": ok})
	}
}

// GET /modules/{moduleID}/can-attempt — advisory check for quiz start;
// submission re-validates server-side regardless.
func CanAttemptHandler(engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		d, err := engine.CanAttemptQuiz(r.Context(), userID, chi.URLParam(r, "moduleID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
