package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/002_orders.sql":     {Data: []byte("CREATE TABLE orders();")},
		"sql/001_init.sql":       {Data: []byte("CREATE TABLE users();")},
		"sql/003_stock.sql":      {Data: []byte("CREATE TABLE stock_items();")},
		"sql/999_reset_all.sql":  {Data: []byte("DROP SCHEMA public CASCADE;")},
		"sql/README.md":          {Data: []byte("notes")},
		"sql/archive/old.sql":    {Data: []byte("SELECT 1;")},
	}

	pending, err := PendingMigrations(fsys, "sql", map[string]bool{"002_orders.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "003_stock.sql"}, pending)
}

func TestPendingMigrations_MissingDir(t *testing.T) {
	_, err := PendingMigrations(fstest.MapFS{}, "nope", nil)
	assert.Error(t, err)
}
