// Package respond translates core results and error kinds into HTTP
// responses. The core defines only the kind; wording for the UI lives in the
// collaborator layer.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shipledger/ledger/internal/service/errs"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Error maps a core error kind to its HTTP status and writes it out.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		status, kind = http.StatusBadRequest, "invalidInput"
	case errors.Is(err, errs.ErrUnauthorized):
		status, kind = http.StatusForbidden, "unauthorized"
	case errors.Is(err, errs.ErrNotFound):
		status, kind = http.StatusNotFound, "notFound"
	case errors.Is(err, errs.ErrInvalidState):
		status, kind = http.StatusConflict, "invalidState"
	case errors.Is(err, errs.ErrInsufficientFunds):
		status, kind = http.StatusUnprocessableEntity, "insufficientFunds"
	}

	JSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
