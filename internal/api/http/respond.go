package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/traingate/traingate/internal/cert"
	"github.com/traingate/traingate/internal/training"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// decodeValid decodes the JSON body into v and runs struct validation.
func decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid payload")
	}
	if err := validate.Struct(v); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}

// respondErr maps domain errors onto the HTTP taxonomy: gate closures are
// forbidden with their specific reason, missing entities are 404,
// misconfiguration is 400, everything else is a logged 500. Persistence
// failures never masquerade as success.
func respondErr(w http.ResponseWriter, err error) {
	var gate *training.GateClosedError
	switch {
	case errors.As(err, &gate):
		writeMessage(w, http.StatusForbidden, gate.Reason)
	case errors.Is(err, training.ErrModuleNotFound),
		errors.Is(err, training.ErrMainModuleMissing),
		errors.Is(err, training.ErrQuizNotFound),
		errors.Is(err, training.ErrQuestionNotFound),
		errors.Is(err, training.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, training.ErrNoActiveQuestions),
		errors.Is(err, training.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, training.ErrNoAttemptsLeft):
		writeMessage(w, http.StatusForbidden, training.ReasonNoAttemptsLeft)
	case errors.Is(err, cert.ErrNotEligible):
		writeMessage(w, http.StatusBadRequest, "Not eligible")
	default:
		log.Printf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}
