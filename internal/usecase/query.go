package usecase

import (
	"context"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// FunnelQueryUseCase serves the read-only dashboard listings.
type FunnelQueryUseCase struct {
	Stores entity.Stores
}

func NewFunnelQueryUseCase(stores entity.Stores) *FunnelQueryUseCase {
	return &FunnelQueryUseCase{Stores: stores}
}

func (uc *FunnelQueryUseCase) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Stores.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, storageError("load lead", "lead", id, err)
	}
	return lead, nil
}

func (uc *FunnelQueryUseCase) ListLeads(ctx context.Context) ([]*entity.Lead, error) {
	leads, err := uc.Stores.Leads.List(ctx)
	if err != nil {
		return nil, storageError("list leads", "lead", "", err)
	}
	return leads, nil
}

func (uc *FunnelQueryUseCase) ListMQLs(ctx context.Context) ([]*entity.MQL, error) {
	mqls, err := uc.Stores.MQLs.List(ctx)
	if err != nil {
		return nil, storageError("list mqls", "mql", "", err)
	}
	return mqls, nil
}

func (uc *FunnelQueryUseCase) ListSQLs(ctx context.Context) ([]*entity.SQL, error) {
	sqls, err := uc.Stores.SQLs.List(ctx)
	if err != nil {
		return nil, storageError("list sqls", "sql", "", err)
	}
	return sqls, nil
}
