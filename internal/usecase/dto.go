package usecase

import (
	"time"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type CreateLeadInput struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Website string `json:"website"`
	Mobile  string `json:"mobile"`
	Service string `json:"service"`
	Email   string `json:"email"`
}

type UpdateStatusInput struct {
	Status string `json:"status"`
}

// CascadeResult lists the downstream records a transition created or removed.
type CascadeResult struct {
	MQLCreated *entity.MQL
	MQLRemoved *entity.MQL
	SQLCreated *entity.SQL
	SQLRemoved *entity.SQL
}

func (r CascadeResult) Empty() bool {
	return r.MQLCreated == nil && r.MQLRemoved == nil && r.SQLCreated == nil && r.SQLRemoved == nil
}

// Events turns the result into funnel events about lead.
func (r CascadeResult) Events(lead *entity.Lead, at time.Time) []entity.FunnelEvent {
	var events []entity.FunnelEvent
	base := entity.FunnelEvent{
		LeadID:     lead.ID,
		Name:       lead.Name,
		Email:      lead.Email,
		Company:    lead.Company,
		Service:    lead.Service,
		OccurredAt: at,
	}
	if r.SQLRemoved != nil {
		ev := base
		ev.Type = entity.EventSQLRemoved
		ev.MQLID = r.SQLRemoved.ContactRef
		ev.SQLID = r.SQLRemoved.ID
		events = append(events, ev)
	}
	if r.MQLRemoved != nil {
		ev := base
		ev.Type = entity.EventMQLRemoved
		ev.MQLID = r.MQLRemoved.ID
		events = append(events, ev)
	}
	if r.MQLCreated != nil {
		ev := base
		ev.Type = entity.EventMQLCreated
		ev.MQLID = r.MQLCreated.ID
		events = append(events, ev)
	}
	if r.SQLCreated != nil {
		ev := base
		ev.Type = entity.EventSQLCreated
		ev.MQLID = r.SQLCreated.ContactRef
		ev.SQLID = r.SQLCreated.ID
		events = append(events, ev)
	}
	return events
}

type ReconcileReport struct {
	LeadsChecked int `json:"leads_checked"`
	MQLsChecked  int `json:"mqls_checked"`
	MQLsCreated  int `json:"mqls_created"`
	MQLsRemoved  int `json:"mqls_removed"`
	SQLsCreated  int `json:"sqls_created"`
	SQLsRemoved  int `json:"sqls_removed"`
}

func (r ReconcileReport) Repaired() int {
	return r.MQLsCreated + r.MQLsRemoved + r.SQLsCreated + r.SQLsRemoved
}

func (r *ReconcileReport) add(res CascadeResult) {
	if res.MQLCreated != nil {
		r.MQLsCreated++
	}
	if res.MQLRemoved != nil {
		r.MQLsRemoved++
	}
	if res.SQLCreated != nil {
		r.SQLsCreated++
	}
	if res.SQLRemoved != nil {
		r.SQLsRemoved++
	}
}
