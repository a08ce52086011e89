package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/agency-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

type MQLHandler struct {
	funnel *usecase.FunnelEngine
	query  *usecase.FunnelQueryUseCase
}

func NewMQLHandler(funnel *usecase.FunnelEngine, query *usecase.FunnelQueryUseCase) *MQLHandler {
	return &MQLHandler{funnel: funnel, query: query}
}

func (h *MQLHandler) ListMQLs(w http.ResponseWriter, r *http.Request) {
	mqls, err := h.query.ListMQLs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mqls)
}

func (h *MQLHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	mql, res, err := h.funnel.UpdateMQLStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordStatusChange("mql", string(mql.Status))
	middleware.RecordCascade(res)
	writeJSON(w, http.StatusOK, mql)
}
