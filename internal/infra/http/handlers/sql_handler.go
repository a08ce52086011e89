package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/agency-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

type SQLHandler struct {
	funnel *usecase.FunnelEngine
	query  *usecase.FunnelQueryUseCase
}

func NewSQLHandler(funnel *usecase.FunnelEngine, query *usecase.FunnelQueryUseCase) *SQLHandler {
	return &SQLHandler{funnel: funnel, query: query}
}

func (h *SQLHandler) ListSQLs(w http.ResponseWriter, r *http.Request) {
	sqls, err := h.query.ListSQLs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sqls)
}

func (h *SQLHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sql, err := h.funnel.UpdateSQLStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordStatusChange("sql", string(sql.Status))
	writeJSON(w, http.StatusOK, sql)
}
