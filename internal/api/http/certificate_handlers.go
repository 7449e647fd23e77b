package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/traingate/traingate/internal/cert"
	"github.com/traingate/traingate/internal/training"
)

// GET /certificate — current global eligibility plus a download URL when
// one has been issued and is still valid.
func CertificateStatusHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		st, err := issuer.GlobalStatus(r.Context(), u.ID)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// POST /certificate — generate (or regenerate) the global certificate.
func IssueCertificateHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		url, err := issuer.IssueGlobal(r.Context(), u)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

func CertificateDownloadHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		serveCertificate(w, r, issuer, u.ID, training.GlobalCertificate)
	}
}

func MainModuleCertificateStatusHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		st, err := issuer.MainModuleStatus(r.Context(), u.ID, id)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func IssueMainModuleCertificateHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		url, err := issuer.IssueForMainModule(r.Context(), u, id)
		if err != nil {
			respondErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

func MainModuleCertificateDownloadHandler(store training.Store, issuer *cert.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r, store)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Session is stale. Please sign in again.")
			return
		}
		id, err := mainModuleID(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid main module id")
			return
		}
		serveCertificate(w, r, issuer, u.ID, id)
	}
}

func serveCertificate(w http.ResponseWriter, r *http.Request, issuer *cert.Issuer, userID string, mainModuleID int64) {
	f, err := issuer.Open(r.Context(), userID, mainModuleID)
	if err != nil {
		respondErr(w, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate.pdf"`)
	_, _ = io.Copy(w, f)
}

func mainModuleID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "mainModuleID"), 10, 64)
}
