package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor runs funnel cascades inside a Postgres transaction.
// Read committed is enough: transitions lock their parent row with
// SELECT ... FOR UPDATE before reading dependents.
type Transactor struct {
	DB *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{DB: db}
}

func storesFor(q dbtx) entity.Stores {
	return entity.Stores{
		Leads: &LeadRepository{DB: q},
		MQLs:  &MQLRepository{DB: q},
		SQLs:  &SQLRepository{DB: q},
	}
}

func (t *Transactor) Stores() entity.Stores {
	return storesFor(t.DB)
}

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores entity.Stores) error) error {
	tx, err := t.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, storesFor(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
