package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type SQLRepository struct {
	DB dbtx
}

const sqlColumns = `id, contact_ref, status, created_at, updated_at`

func scanSQL(row rowScanner) (*entity.SQL, error) {
	s := &entity.SQL{}
	if err := row.Scan(&s.ID, &s.ContactRef, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*entity.SQL, error) {
	query := `SELECT ` + sqlColumns + ` FROM sqls WHERE id = $1`
	s, err := scanSQL(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError("select sql", err)
	}
	return s, nil
}

func (r *SQLRepository) FindByParent(ctx context.Context, mqlID string) (*entity.SQL, error) {
	query := `SELECT ` + sqlColumns + ` FROM sqls WHERE contact_ref = $1`
	s, err := scanSQL(r.DB.QueryRowContext(ctx, query, mqlID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("select sql by mql", err)
	}
	return s, nil
}

func (r *SQLRepository) Create(ctx context.Context, mqlID string) (*entity.SQL, error) {
	s := entity.NewSQL(mqlID)
	query := `
		INSERT INTO sqls (` + sqlColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.ContactRef, s.Status, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return nil, mapError("insert sql", err)
	}
	return s, nil
}

func (r *SQLRepository) CreateIfAbsent(ctx context.Context, mqlID string) (*entity.SQL, bool, error) {
	s := entity.NewSQL(mqlID)
	query := `
		INSERT INTO sqls (` + sqlColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contact_ref) DO NOTHING
		RETURNING ` + sqlColumns
	created, err := scanSQL(r.DB.QueryRowContext(ctx, query, s.ID, s.ContactRef, s.Status, s.CreatedAt, s.UpdatedAt))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, mapError("upsert sql", err)
	}

	existing, err := r.FindByParent(ctx, mqlID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, mapError("upsert sql", entity.ErrConflict)
	}
	return existing, false, nil
}

func (r *SQLRepository) DeleteByParent(ctx context.Context, mqlID string) (*entity.SQL, error) {
	query := `DELETE FROM sqls WHERE contact_ref = $1 RETURNING ` + sqlColumns
	s, err := scanSQL(r.DB.QueryRowContext(ctx, query, mqlID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("delete sql", err)
	}
	return s, nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, status entity.SQLStatus) (*entity.SQL, error) {
	query := `
		UPDATE sqls SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sqlColumns
	s, err := scanSQL(r.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		return nil, mapError("update sql status", err)
	}
	return s, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*entity.SQL, error) {
	query := `
		SELECT s.id, s.contact_ref, s.status, s.created_at, s.updated_at,
		       ` + prefixed("m", mqlColumns) + `,
		       ` + prefixed("l", leadColumns) + `
		FROM sqls s
		JOIN mqls m ON m.id = s.contact_ref
		JOIN leads l ON l.id = m.contact_ref
		ORDER BY s.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError("list sqls", err)
	}
	defer rows.Close()

	sqls := []*entity.SQL{}
	for rows.Next() {
		s := &entity.SQL{Contact: &entity.MQL{Contact: &entity.Lead{}}}
		m, l := s.Contact, s.Contact.Contact
		err := rows.Scan(
			&s.ID, &s.ContactRef, &s.Status, &s.CreatedAt, &s.UpdatedAt,
			&m.ID, &m.ContactRef, &m.Status, &m.CreatedAt, &m.UpdatedAt,
			&l.ID, &l.Name, &l.Company, &l.Website, &l.Mobile, &l.Service, &l.Email, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, mapError("scan sql", err)
		}
		sqls = append(sqls, s)
	}
	return sqls, mapError("list sqls", rows.Err())
}

// prefixed qualifies a comma separated column list with a table alias.
func prefixed(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
