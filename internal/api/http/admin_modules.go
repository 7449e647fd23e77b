package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/traingate/traingate/internal/training"
)

func ListModulesHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mods, err := store.ListModules(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		if mods == nil {
			mods = []training.ModuleWithQuiz{}
		}
		writeJSON(w, http.StatusOK, mods)
	}
}

func CreateModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
			YouTubeID   string `json:"youtube_id"`
			Order       int    `json:"order"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		m := training.Module{
			ID:          uuid.NewString(),
			SortOrder:   req.Order,
			Title:       req.Title,
			Description: req.Description,
			YouTubeID:   req.YouTubeID,
		}
		if err := store.CreateModule(r.Context(), m); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func UpdateModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "moduleID")
		existing, err := store.GetModule(r.Context(), id)
		if err != nil {
			respondErr(w, err)
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
			YouTubeID   string `json:"youtube_id"`
			Order       *int   `json:"order"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		existing.Title = req.Title
		existing.Description = req.Description
		existing.YouTubeID = req.YouTubeID
		if req.Order != nil {
			existing.SortOrder = *req.Order
		}
		if err := store.UpdateModule(r.Context(), existing); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, existing)
	}
}

func DeleteModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteModule(r.Context(), chi.URLParam(r, "moduleID")); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// POST /admin/modules/reorder — renumber the legacy global sequence.
func ReorderModulesHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ModuleIDs []string `json:"module_ids" validate:"required,min=1"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.ReorderModules(r.Context(), req.ModuleIDs); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
