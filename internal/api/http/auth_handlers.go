package http

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/traingate/traingate/internal/auth"
	"github.com/traingate/traingate/internal/training"
)

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(store training.Store, a *auth.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := decodeValid(r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		u, err := store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, training.ErrUserNotFound) {
				writeMessage(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respondErr(w, err)
			return
		}
		if u.Disabled {
			writeMessage(w, http.StatusForbidden, "account disabled")
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		tok, err := a.IssueJWT(u.ID, string(u.Role))
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": tok})
	}
}

// currentUser resolves the authenticated user, guarding against stale
// sessions whose user row was deleted since the token was issued.
func currentUser(r *http.Request, store training.Store) (training.User, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return training.User{}, training.ErrUserNotFound
	}
	return store.GetUser(r.Context(), sub)
}
