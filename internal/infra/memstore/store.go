// Package memstore keeps the funnel in process memory. It is used for
// local runs without Postgres and by tests. Transactions are serialized
// by a single mutex and applied copy-on-commit.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

func New() *Store {
	return &Store{state: newState()}
}

type state struct {
	leads     map[string]entity.Lead
	mqls      map[string]entity.MQL
	mqlByLead map[string]string
	sqls      map[string]entity.SQL
	sqlByMQL  map[string]string
}

func newState() *state {
	return &state{
		leads:     map[string]entity.Lead{},
		mqls:      map[string]entity.MQL{},
		mqlByLead: map[string]string{},
		sqls:      map[string]entity.SQL{},
		sqlByMQL:  map[string]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.leads {
		c.leads[k] = v
	}
	for k, v := range s.mqls {
		c.mqls[k] = v
	}
	for k, v := range s.mqlByLead {
		c.mqlByLead[k] = v
	}
	for k, v := range s.sqls {
		c.sqls[k] = v
	}
	for k, v := range s.sqlByMQL {
		c.sqlByMQL[k] = v
	}
	return c
}

// view binds repositories to a state. mu is nil inside a transaction,
// where the store mutex is already held.
type view struct {
	mu    *sync.Mutex
	state func() *state
}

func (v view) lock() func() {
	if v.mu == nil {
		return func() {}
	}
	v.mu.Lock()
	return v.mu.Unlock
}

func (v view) stores() entity.Stores {
	return entity.Stores{
		Leads: &leadRepo{v},
		MQLs:  &mqlRepo{v},
		SQLs:  &sqlRepo{v},
	}
}

// Stores returns repositories whose calls each run on their own.
func (s *Store) Stores() entity.Stores {
	return view{mu: &s.mu, state: func() *state { return s.state }}.stores()
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, stores entity.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.state.clone()
	if err := fn(ctx, view{state: func() *state { return work }}.stores()); err != nil {
		return err
	}
	s.state = work
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

type leadRepo struct{ v view }

func (r *leadRepo) Create(_ context.Context, lead *entity.Lead) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.leads[lead.ID]; ok {
		return entity.ErrConflict
	}
	st.leads[lead.ID] = *lead
	return nil
}

func (r *leadRepo) FindByID(_ context.Context, id string) (*entity.Lead, error) {
	defer r.v.lock()()
	l, ok := r.v.state().leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &l, nil
}

func (r *leadRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.Lead, error) {
	return r.FindByID(ctx, id)
}

func (r *leadRepo) UpdateStatus(_ context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	defer r.v.lock()()
	st := r.v.state()
	l, ok := st.leads[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = now()
	st.leads[id] = l
	return &l, nil
}

func (r *leadRepo) List(_ context.Context) ([]*entity.Lead, error) {
	defer r.v.lock()()
	st := r.v.state()
	out := make([]*entity.Lead, 0, len(st.leads))
	for _, l := range st.leads {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type mqlRepo struct{ v view }

func (r *mqlRepo) FindByID(_ context.Context, id string) (*entity.MQL, error) {
	defer r.v.lock()()
	m, ok := r.v.state().mqls[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &m, nil
}

func (r *mqlRepo) FindByIDForUpdate(ctx context.Context, id string) (*entity.MQL, error) {
	return r.FindByID(ctx, id)
}

func (r *mqlRepo) FindByParent(_ context.Context, leadID string) (*entity.MQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	id, ok := st.mqlByLead[leadID]
	if !ok {
		return nil, nil
	}
	m := st.mqls[id]
	return &m, nil
}

func (r *mqlRepo) Create(ctx context.Context, leadID string) (*entity.MQL, error) {
	m, created, err := r.CreateIfAbsent(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, entity.ErrConflict
	}
	return m, nil
}

func (r *mqlRepo) CreateIfAbsent(_ context.Context, leadID string) (*entity.MQL, bool, error) {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.leads[leadID]; !ok {
		return nil, false, entity.ErrNotFound
	}
	if id, ok := st.mqlByLead[leadID]; ok {
		m := st.mqls[id]
		return &m, false, nil
	}
	m := entity.NewMQL(leadID)
	st.mqls[m.ID] = *m
	st.mqlByLead[leadID] = m.ID
	return m, true, nil
}

// DeleteByParent also drops the MQL's SQL, like the ON DELETE CASCADE
// foreign key does in Postgres.
func (r *mqlRepo) DeleteByParent(_ context.Context, leadID string) (*entity.MQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	id, ok := st.mqlByLead[leadID]
	if !ok {
		return nil, nil
	}
	m := st.mqls[id]
	delete(st.mqls, id)
	delete(st.mqlByLead, leadID)
	if sqlID, ok := st.sqlByMQL[id]; ok {
		delete(st.sqls, sqlID)
		delete(st.sqlByMQL, id)
	}
	return &m, nil
}

func (r *mqlRepo) UpdateStatus(_ context.Context, id string, status entity.MQLStatus) (*entity.MQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	m, ok := st.mqls[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = now()
	st.mqls[id] = m
	return &m, nil
}

func (r *mqlRepo) List(_ context.Context) ([]*entity.MQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	out := make([]*entity.MQL, 0, len(st.mqls))
	for _, m := range st.mqls {
		m := m
		if l, ok := st.leads[m.ContactRef]; ok {
			m.Contact = &l
		}
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type sqlRepo struct{ v view }

func (r *sqlRepo) FindByID(_ context.Context, id string) (*entity.SQL, error) {
	defer r.v.lock()()
	s, ok := r.v.state().sqls[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &s, nil
}

func (r *sqlRepo) FindByParent(_ context.Context, mqlID string) (*entity.SQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	id, ok := st.sqlByMQL[mqlID]
	if !ok {
		return nil, nil
	}
	s := st.sqls[id]
	return &s, nil
}

func (r *sqlRepo) Create(ctx context.Context, mqlID string) (*entity.SQL, error) {
	s, created, err := r.CreateIfAbsent(ctx, mqlID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, entity.ErrConflict
	}
	return s, nil
}

func (r *sqlRepo) CreateIfAbsent(_ context.Context, mqlID string) (*entity.SQL, bool, error) {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.mqls[mqlID]; !ok {
		return nil, false, entity.ErrNotFound
	}
	if id, ok := st.sqlByMQL[mqlID]; ok {
		s := st.sqls[id]
		return &s, false, nil
	}
	s := entity.NewSQL(mqlID)
	st.sqls[s.ID] = *s
	st.sqlByMQL[mqlID] = s.ID
	return s, true, nil
}

func (r *sqlRepo) DeleteByParent(_ context.Context, mqlID string) (*entity.SQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	id, ok := st.sqlByMQL[mqlID]
	if !ok {
		return nil, nil
	}
	s := st.sqls[id]
	delete(st.sqls, id)
	delete(st.sqlByMQL, mqlID)
	return &s, nil
}

func (r *sqlRepo) UpdateStatus(_ context.Context, id string, status entity.SQLStatus) (*entity.SQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	s, ok := st.sqls[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = now()
	st.sqls[id] = s
	return &s, nil
}

func (r *sqlRepo) List(_ context.Context) ([]*entity.SQL, error) {
	defer r.v.lock()()
	st := r.v.state()
	out := make([]*entity.SQL, 0, len(st.sqls))
	for _, s := range st.sqls {
		s := s
		if m, ok := st.mqls[s.ContactRef]; ok {
			if l, ok := st.leads[m.ContactRef]; ok {
				m.Contact = &l
			}
			s.Contact = &m
		}
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
