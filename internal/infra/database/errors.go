package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqInvalidText         = pq.ErrorCode("22P02")
)

// mapError translates driver errors into entity sentinels, keeping the
// original error in the chain.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, entity.ErrConflict, pqErr.Constraint)
		case pqForeignKeyViolation, pqInvalidText:
			// a missing parent, or an id that is not even a uuid
			return fmt.Errorf("%s: %w (%s)", op, entity.ErrNotFound, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
