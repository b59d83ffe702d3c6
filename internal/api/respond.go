package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelDesk/internal/apperr"
	"github.com/BearBump/ParcelDesk/internal/integrations/giststore"
	"github.com/BearBump/ParcelDesk/internal/services/admin"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps the error taxonomy to HTTP statuses. Everything lands as
// a dismissable JSON error on the dashboard; nothing here kills the process.
func respondError(w http.ResponseWriter, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		pe *apperr.ParseError
		fe *apperr.FormatError
		te *apperr.TransportError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &pe):
		writeError(w, http.StatusBadRequest, pe.Error())
	case errors.As(err, &fe):
		writeError(w, http.StatusBadRequest, fe.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusBadGateway, te.Error())
	case errors.Is(err, giststore.ErrSyncInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, admin.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
