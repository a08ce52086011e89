package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	err := mapError("select lead", sql.ErrNoRows)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = mapError("insert mql", &pq.Error{Code: "23505", Constraint: "mqls_contact_ref_key"})
	assert.ErrorIs(t, err, entity.ErrConflict)
	assert.Contains(t, err.Error(), "mqls_contact_ref_key")

	err = mapError("insert sql", &pq.Error{Code: "23503", Message: "violates foreign key"})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	err = mapError("select lead", &pq.Error{Code: "22P02", Message: "invalid input syntax for type uuid"})
	assert.ErrorIs(t, err, entity.ErrNotFound)

	cause := errors.New("connection refused")
	err = mapError("list leads", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, entity.ErrNotFound))
	assert.False(t, errors.Is(err, entity.ErrConflict))
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "m.id, m.contact_ref, m.status, m.created_at, m.updated_at", prefixed("m", mqlColumns))
}

func TestMigrationsAreEmbedded(t *testing.T) {
	body, err := migrations.ReadFile("migrations/001_funnel.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(body), "contact_ref UUID NOT NULL UNIQUE REFERENCES leads")
	assert.Contains(t, string(body), "contact_ref UUID NOT NULL UNIQUE REFERENCES mqls")
}
