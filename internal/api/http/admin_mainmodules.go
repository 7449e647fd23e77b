package http

import (
	"net/http"

	"github.com/traingate/traingate/internal/training"
)

func ListMainModulesHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mains, err := store.ListMainModules(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		if mains == nil {
			mains = []training.MainModule{}
		}
		writeJSON(w, http.StatusOK, mains)
	}
}

func CreateMainModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
			YouTubeID   string `json:"youtube_id"`
			OrderIndex  int    `json:"order_index"`
			Active      *bool  `json:"active"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		active := true
		if req.Active != nil {
			active = *req.Active
		}
		m, err := store.CreateMainModule(r.Context(), training.MainModule{
			OrderIndex:  req.OrderIndex,
			Title:       req.Title,
			Description: req.Description,
			YouTubeID:   req.YouTubeID,
			Active:      active,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func UpdateMainModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		var req struct {
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
			YouTubeID   string `json:"youtube_id"`
			OrderIndex  int    `json:"order_index" validate:"required,min=1"`
			Active      bool   `json:"active"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		err = store.UpdateMainModule(r.Context(), training.MainModule{
			ID:          id,
			OrderIndex:  req.OrderIndex,
			Title:       req.Title,
			Description: req.Description,
			YouTubeID:   req.YouTubeID,
			Active:      req.Active,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func DeleteMainModuleHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		if err := store.DeleteMainModule(r.Context(), id); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// GET /admin/main-modules/{mainModuleID}/assign — current membership plus
// the pool of unassigned modules.
func GetAssignmentsHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		assigned, err := store.ListAssignedModules(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		mine := []training.ModuleWithQuiz{}
		for _, m := range assigned {
			if m.MainModuleID != nil && *m.MainModuleID == id {
				mine = append(mine, m)
			}
		}
		available, err := store.ListUnassignedModules(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		if available == nil {
			available = []training.Module{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"assigned": mine, "available": available})
	}
}

// PATCH /admin/main-modules/{mainModuleID}/assign — replace the group's
// membership with the given ordered list; positions renumber 1..n.
func AssignModulesHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		// An empty module_ids list is legal: it clears the group.
		var req struct {
			ModuleIDs []string `json:"module_ids"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.AssignModules(r.Context(), id, req.ModuleIDs); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}
