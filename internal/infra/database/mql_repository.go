package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type MQLRepository struct {
	DB dbtx
}

const mqlColumns = `id, contact_ref, status, created_at, updated_at`

func scanMQL(row rowScanner) (*entity.MQL, error) {
	m := &entity.MQL{}
	if err := row.Scan(&m.ID, &m.ContactRef, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MQLRepository) FindByID(ctx context.Context, id string) (*entity.MQL, error) {
	query := `SELECT ` + mqlColumns + ` FROM mqls WHERE id = $1`
	m, err := scanMQL(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("select mql", err)
	}
	return m, nil
}

func (r *MQLRepository) FindByIDForUpdate(ctx context.Context, id string) (*entity.MQL, error) {
	query := `SELECT ` + mqlColumns + ` FROM mqls WHERE id = $1 FOR UPDATE`
	m, err := scanMQL(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("lock mql", err)
	}
	return m, nil
}

func (r *MQLRepository) FindByParent(ctx context.Context, leadID string) (*entity.MQL, error) {
	query := `SELECT ` + mqlColumns + ` FROM mqls WHERE contact_ref = $1`
	m, err := scanMQL(r.DB.QueryRowContext(ctx, query, leadID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select mql by lead", err)
	}
	return m, nil
}

func (r *MQLRepository) Create(ctx context.Context, leadID string) (*entity.MQL, error) {
	m := entity.NewMQL(leadID)
	query := `
		INSERT INTO mqls (` + mqlColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, m.ID, m.ContactRef, m.Status, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return nil, mapError("insert mql", err)
	}
	return m, nil
}

// CreateIfAbsent relies on the unique contact_ref: a concurrent insert makes
// ours a no-op and the winner's row is returned instead.
func (r *MQLRepository) CreateIfAbsent(ctx context.Context, leadID string) (*entity.MQL, bool, error) {
	m := entity.NewMQL(leadID)
	query := `
		INSERT INTO mqls (` + mqlColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contact_ref) DO NOTHING
		RETURNING ` + mqlColumns
	created, err := scanMQL(r.DB.QueryRowContext(ctx, query, m.ID, m.ContactRef, m.Status, m.CreatedAt, m.UpdatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, mapError("upsert mql", err)
	}

	existing, err := r.FindByParent(ctx, leadID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// the conflicting row was deleted before we could read it
		return nil, false, mapError("upsert mql", entity.ErrConflict)
	}
	return existing, false, nil
}

func (r *MQLRepository) DeleteByParent(ctx context.Context, leadID string) (*entity.MQL, error) {
	query := `DELETE FROM mqls WHERE contact_ref = $1 RETURNING ` + mqlColumns
	m, err := scanMQL(r.DB.QueryRowContext(ctx, query, leadID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("delete mql", err)
	}
	return m, nil
}

func (r *MQLRepository) UpdateStatus(ctx context.Context, id string, status entity.MQLStatus) (*entity.MQL, error) {
	query := `
		UPDATE mqls SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mqlColumns
	m, err := scanMQL(r.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		return nil, mapError("update mql status", err)
	}
	return m, nil
}

func (r *MQLRepository) List(ctx context.Context) ([]*entity.MQL, error) {
	query := `
		SELECT m.id, m.contact_ref, m.status, m.created_at, m.updated_at,
		       ` + prefixed("l", leadColumns) + `
		FROM mqls m
		JOIN leads l ON l.id = m.contact_ref
		ORDER BY m.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list mqls", err)
	}
	defer rows.Close()

	mqls := []*entity.MQL{}
	for rows.Next() {
		m := &entity.MQL{Contact: &entity.Lead{}}
		l := m.Contact
		err := rows.Scan(
			&m.ID, &m.ContactRef, &m.Status, &m.CreatedAt, &m.UpdatedAt,
			&l.ID, &l.Name, &l.Company, &l.Website, &l.Mobile, &l.Service, &l.Email, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, mapError("scan mql", err)
		}
		mqls = append(mqls, m)
	}
	return mqls, mapError("list mqls", rows.Err())
}
