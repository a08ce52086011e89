package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/agency-funnel/internal/infra/http/middleware"
	"github.com/xavierca1/agency-funnel/internal/usecase"
)

type LeadHandler struct {
	createLead  *usecase.CreateLeadUseCase
	funnel      *usecase.FunnelEngine
	query       *usecase.FunnelQueryUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(createLead *usecase.CreateLeadUseCase, funnel *usecase.FunnelEngine, query *usecase.FunnelQueryUseCase, rl *RateLimiter) *LeadHandler {
	return &LeadHandler{
		createLead:  createLead,
		funnel:      funnel,
		query:       query,
		rateLimiter: rl,
	}
}

// CaptureLead handles POST /leads from the public contact forms.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeFailure(w, http.StatusTooManyRequests, "too many requests, please try again later")
		return
	}

	var input usecase.CreateLeadInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	lead, err := h.createLead.Execute(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := h.query.ListLeads(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	lead, err := h.query.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus handles PUT /leads/{id}; answering a lead opens its MQL,
// anything else closes the MQL and its SQL.
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateStatusInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	lead, res, err := h.funnel.UpdateLeadStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.RecordStatusChange("lead", string(lead.Status))
	middleware.RecordCascade(res)
	writeJSON(w, http.StatusOK, lead)
}
