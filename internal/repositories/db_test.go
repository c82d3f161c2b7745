package repositories

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestFilterBuilder(t *testing.T) {
	var f filterBuilder
	assert.Equal(t, "", f.where())

	f.add("status = $%d", "pending")
	f.add("(name ILIKE $%[1]d OR phone ILIKE $%[1]d)", "%ravi%")
	f.conds = append(f.conds, "is_active")

	assert.Equal(t, "WHERE status = $1 AND (name ILIKE $2 OR phone ILIKE $2) AND is_active", f.where())
	assert.Equal(t, " LIMIT $3 OFFSET $4", f.page(0, -5))
	assert.Equal(t, []any{"pending", "%ravi%", 500, 0}, f.args)
}

func TestNotFoundMapping(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), ErrNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, notFound(other))
	assert.NoError(t, notFound(nil))
}
