package database

import (
	"context"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type LeadRepository struct {
	DB dbtx
}

const leadColumns = `id, name, company, website, mobile, service, email, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	l := &entity.Lead{}
	err := row.Scan(&l.ID, &l.Name, &l.Company, &l.Website, &l.Mobile, &l.Service, &l.Email, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID, lead.Name, lead.Company, lead.Website, lead.Mobile,
		lead.Service, lead.Email, lead.Status, lead.CreatedAt, lead.UpdatedAt,
	)
	return mapError("insert lead", err)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("select lead", err)
	}
	return lead, nil
}

func (r *LeadRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 FOR UPDATE`
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("lock lead", err)
	}
	return lead, nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	query := `
		UPDATE leads SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + leadColumns
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		return nil, mapError("update lead status", err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list leads", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, mapError("scan lead", err)
		}
		leads = append(leads, lead)
	}
	return leads, mapError("list leads", rows.Err())
}
