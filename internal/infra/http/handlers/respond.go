package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/overseaspath/crm-backend/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the core error taxonomy onto HTTP statuses. Technical
// errors stay opaque 500s; their detail belongs in logs, not responses.
func writeError(w http.ResponseWriter, err error) {
	if dErr, ok := err.(*usecase.DomainError); ok {
		status := http.StatusInternalServerError
		switch dErr.Code {
		case usecase.CodeValidation:
			status = http.StatusUnprocessableEntity
		case usecase.CodeForbidden:
			status = http.StatusForbidden
		case usecase.CodeNotFound:
			status = http.StatusNotFound
		case usecase.CodeAlreadyConverted:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Code: dErr.Code, Message: dErr.Message})
		return
	}

	if tErr, ok := err.(*usecase.TechnicalError); ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: tErr.Code, Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
}
