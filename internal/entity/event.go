package entity

import "time"

type FunnelEventType string

const (
	EventMQLCreated FunnelEventType = "mql.created"
	EventMQLRemoved FunnelEventType = "mql.removed"
	EventSQLCreated FunnelEventType = "sql.created"
	EventSQLRemoved FunnelEventType = "sql.removed"
)

// FunnelEvent is published after a cascade commits.
type FunnelEvent struct {
	Type       FunnelEventType `json:"type"`
	LeadID     string          `json:"lead_id"`
	MQLID      string          `json:"mql_id,omitempty"`
	SQLID      string          `json:"sql_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Email      string          `json:"email,omitempty"`
	Company    string          `json:"company,omitempty"`
	Service    Service         `json:"service,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
