package entity

// Cascade is what a status change requires from the next funnel stage.
type Cascade int

const (
	// CascadeEnsure: the downstream record must exist.
	CascadeEnsure Cascade = iota + 1
	// CascadeRemove: the downstream record must not exist.
	CascadeRemove
)

func (c Cascade) String() string {
	switch c {
	case CascadeEnsure:
		return "ensure"
	case CascadeRemove:
		return "remove"
	}
	return "unknown"
}

// MQLCascade is the Lead stage transition: only answered leads keep an MQL.
func (s LeadStatus) MQLCascade() Cascade {
	if s == LeadAnswered {
		return CascadeEnsure
	}
	return CascadeRemove
}

// SQLCascade is the MQL stage transition: only MQLs that showed keep an SQL.
func (s MQLStatus) SQLCascade() Cascade {
	if s == MQLShowed {
		return CascadeEnsure
	}
	return CascadeRemove
}
