package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/infra/logger"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, Response{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, Response{Success: false, Error: msg})
}

// writeError maps usecase errors onto HTTP statuses. Technical errors are
// logged and hidden from the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		switch de.Code {
		case usecase.CodeValidation:
			writeFailure(w, http.StatusBadRequest, de.Message)
		case usecase.CodeNotFound:
			writeFailure(w, http.StatusNotFound, de.Message)
		case usecase.CodeConflict:
			writeFailure(w, http.StatusConflict, de.Message)
		default:
			writeFailure(w, http.StatusBadRequest, de.Message)
		}
		return
	}

	logger.FromContext(r.Context()).Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	msg := "internal server error"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		msg = te.Message
	}
	writeFailure(w, http.StatusInternalServerError, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(dst)
}
