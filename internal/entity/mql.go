package entity

import (
	"time"

	"github.com/google/uuid"
)

type MQLStatus string

const (
	MQLShowed   MQLStatus = "Showed"
	MQLNoShowed MQLStatus = "No Showed"
)

func (s MQLStatus) Valid() bool {
	return s == MQLShowed || s == MQLNoShowed
}

// MQL is the marketing-qualification record of an answered Lead.
// ContactRef points at the Lead; at most one MQL exists per Lead.
type MQL struct {
	ID         string    `json:"id"`
	ContactRef string    `json:"contactRef"`
	Status     MQLStatus `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Contact is only populated by listings.
	Contact *Lead `json:"contact,omitempty"`
}

func NewMQL(leadID string) *MQL {
	now := time.Now().UTC()
	return &MQL{
		ID:         uuid.New().String(),
		ContactRef: leadID,
		Status:     MQLNoShowed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
