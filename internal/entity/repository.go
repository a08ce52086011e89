package entity

import "context"

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// FindByIDForUpdate also locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*Lead, error)
	UpdateStatus(ctx context.Context, id string, status LeadStatus) (*Lead, error)
	List(ctx context.Context) ([]*Lead, error)
}

type MQLRepository interface {
	FindByID(ctx context.Context, id string) (*MQL, error)
	FindByIDForUpdate(ctx context.Context, id string) (*MQL, error)
	// FindByParent returns nil, nil when the lead has no MQL.
	FindByParent(ctx context.Context, leadID string) (*MQL, error)
	// Create fails with ErrConflict if the lead already has an MQL.
	Create(ctx context.Context, leadID string) (*MQL, error)
	// CreateIfAbsent returns the existing MQL with created=false instead of failing.
	CreateIfAbsent(ctx context.Context, leadID string) (mql *MQL, created bool, err error)
	// DeleteByParent returns the removed MQL, or nil, nil if there was none.
	DeleteByParent(ctx context.Context, leadID string) (*MQL, error)
	UpdateStatus(ctx context.Context, id string, status MQLStatus) (*MQL, error)
	// List expands each MQL's Contact.
	List(ctx context.Context) ([]*MQL, error)
}

type SQLRepository interface {
	FindByID(ctx context.Context, id string) (*SQL, error)
	FindByParent(ctx context.Context, mqlID string) (*SQL, error)
	Create(ctx context.Context, mqlID string) (*SQL, error)
	CreateIfAbsent(ctx context.Context, mqlID string) (sql *SQL, created bool, err error)
	DeleteByParent(ctx context.Context, mqlID string) (*SQL, error)
	UpdateStatus(ctx context.Context, id string, status SQLStatus) (*SQL, error)
	// List expands Contact two levels (SQL -> MQL -> Lead).
	List(ctx context.Context) ([]*SQL, error)
}

// Stores groups the three funnel repositories bound to one unit of work.
type Stores struct {
	Leads LeadRepository
	MQLs  MQLRepository
	SQLs  SQLRepository
}

// Transactor runs fn atomically: either every write made through the
// given Stores is kept, or none is.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
	Stores() Stores
}
