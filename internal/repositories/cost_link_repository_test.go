package repositories

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

// scriptedDB answers Query with canned rows keyed by a SQL fragment and
// records every Exec.
type scriptedDB struct {
	rows     map[string][][]any
	affected int64
	execs    []execCall
}

func (d *scriptedDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("UPDATE " + strconv.FormatInt(d.affected, 10)), nil
}

func (d *scriptedDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	for frag, rows := range d.rows {
		if strings.Contains(sql, frag) {
			return &cannedRows{data: rows}, nil
		}
	}
	return &cannedRows{}, nil
}

func (d *scriptedDB) QueryRow(context.Context, string, ...any) pgx.Row {
	return cannedRow{}
}

type cannedRow struct{}

func (cannedRow) Scan(...any) error { return pgx.ErrNoRows }

type cannedRows struct {
	data [][]any
	i    int
}

func (r *cannedRows) Close()                                       {}
func (r *cannedRows) Err() error                                   { return nil }
func (r *cannedRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *cannedRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *cannedRows) RawValues() [][]byte                          { return nil }
func (r *cannedRows) Conn() *pgx.Conn                              { return nil }

func (r *cannedRows) Next() bool {
	r.i++
	return r.i <= len(r.data)
}

func (r *cannedRows) Values() ([]any, error) { return r.data[r.i-1], nil }

func (r *cannedRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func TestReassignOrder(t *testing.T) {
	db := &scriptedDB{
		affected: 2,
		rows: map[string][][]any{
			"FROM expenses": {
				{10, []models.Allocation{{OrderID: 1, Amount: 300, OrderNumber: "ORD-000001"}, {OrderID: 3, Amount: 200, OrderNumber: "ORD-000003"}}},
				{11, []models.Allocation{{OrderID: 3, Amount: 50, OrderNumber: "ORD-000003"}, {OrderID: 4, Amount: 50, OrderNumber: "ORD-000004"}}},
			},
		},
	}
	repo := &CostLinkRepository{DB: db}

	n, err := repo.ReassignOrder(context.Background(), 3, 1, "ORD-000001")
	require.NoError(t, err)
	assert.Equal(t, 3*2+2, n, "relinked rows plus rewritten allocations")

	require.Len(t, db.execs, 5)
	for i, table := range []string{"expenses", "workforce_payments", "stock_txns"} {
		assert.Contains(t, db.execs[i].sql, "UPDATE "+table+" SET order_id = $1 WHERE order_id = $2")
		assert.Equal(t, []any{1, 3}, db.execs[i].args)
	}

	assert.Contains(t, db.execs[3].sql, "UPDATE expenses SET bulk_allocations")
	assert.Equal(t, []models.Allocation{{OrderID: 1, Amount: 500, OrderNumber: "ORD-000001"}}, db.execs[3].args[0])
	assert.Equal(t, 10, db.execs[3].args[1])

	assert.Equal(t, []models.Allocation{
		{OrderID: 1, Amount: 50, OrderNumber: "ORD-000001"},
		{OrderID: 4, Amount: 50, OrderNumber: "ORD-000004"},
	}, db.execs[4].args[0])
	assert.Equal(t, 11, db.execs[4].args[1])
}
