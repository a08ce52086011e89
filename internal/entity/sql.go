package entity

import (
	"time"

	"github.com/google/uuid"
)

// SQLStatus tracks the outcome of a sales-qualified lead. It is the last
// stage of the funnel and never cascades.
type SQLStatus string

const (
	SQLPending SQLStatus = "Pending"
	SQLWon     SQLStatus = "Won"
	SQLLost    SQLStatus = "Lost"
)

func (s SQLStatus) Valid() bool {
	switch s {
	case SQLPending, SQLWon, SQLLost:
		return true
	}
	return false
}

// SQL is the sales-qualification record of an MQL that showed up.
// ContactRef points at the MQL; at most one SQL exists per MQL.
type SQL struct {
	ID         string    `json:"id"`
	ContactRef string    `json:"contactRef"`
	Status     SQLStatus `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Contact is only populated by listings, with its own Contact expanded.
	Contact *MQL `json:"contact,omitempty"`
}

func NewSQL(mqlID string) *SQL {
	now := time.Now().UTC()
	return &SQL{
		ID:         uuid.New().String(),
		ContactRef: mqlID,
		Status:     SQLPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
