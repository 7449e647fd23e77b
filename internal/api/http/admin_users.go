package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/traingate/traingate/internal/training"
)

func ListUsersHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		if users == nil {
			users = []training.User{}
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// POST /admin/users — create an account with a starter password.
func CreateUserHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name" validate:"required"`
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required,min=8"`
			Role     string `json:"role" validate:"omitempty,oneof=ADMIN EMPLOYEE"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondErr(w, err)
			return
		}
		role := training.RoleEmployee
		if req.Role == string(training.RoleAdmin) {
			role = training.RoleAdmin
		}
		u := training.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        req.Email,
			Role:         role,
			PasswordHash: string(hash),
		}
		if err := store.CreateUser(r.Context(), u); err != nil {
			if errors.Is(err, training.ErrEmailTaken) {
				writeMessage(w, http.StatusConflict, err.Error())
				return
			}
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// PATCH /admin/users/{userID} — enable or disable an account.
func SetUserDisabledHandler(store training.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Disabled *bool `json:"disabled" validate:"required"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := store.SetUserDisabled(r.Context(), chi.URLParam(r, "userID"), *req.Disabled); err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type userReport struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Passed    int    `json:"passed"`
	Failed    int    `json:"failed"`
	Pending   int    `json:"pending"`
	Locked    int    `json:"locked"`
	Completed int    `json:"completed_main_modules"`
}

// GET /admin/reports — per-user progress rollup for the admin dashboard.
func ReportsHandler(store training.Store, engine *training.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		legacy, err := engine.LegacyMode(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		out := []userReport{}
		for _, u := range users {
			if u.Role != training.RoleEmployee {
				continue
			}
			rep := userReport{UserID: u.ID, Name: u.Name, Email: u.Email}
			if legacy {
				items, err := engine.LegacyProgress(r.Context(), u.ID)
				if err != nil {
					respondErr(w, err)
					return
				}
				for _, it := range items {
					rep.tally(it.Status)
				}
			} else {
				tree, err := engine.MainProgress(r.Context(), u.ID)
				if err != nil {
					respondErr(w, err)
					return
				}
				for _, g := range tree {
					if g.Completed {
						rep.Completed++
					}
					for _, sub := range g.SubModules {
						rep.tally(sub.Status)
					}
				}
			}
			out = append(out, rep)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (r *userReport) tally(s training.ModuleStatus) {
	switch s {
	case training.StatusPassed:
		r.Passed++
	case training.StatusFailed:
		r.Failed++
	case training.StatusPending:
		r.Pending++
	case training.StatusLocked:
		r.Locked++
	}
}
