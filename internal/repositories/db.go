package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx so repositories can run
// either standalone or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// filterBuilder accumulates WHERE conditions with positional args.
type filterBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; format must contain a single %d for the arg index.
func (f *filterBuilder) add(format string, v any) {
	f.args = append(f.args, v)
	f.conds = append(f.conds, fmt.Sprintf(format, len(f.args)))
}

func (f *filterBuilder) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.conds, " AND ")
}

// page appends LIMIT/OFFSET args and returns the clause.
func (f *filterBuilder) page(limit, offset int) string {
	if limit <= 0 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}
	f.args = append(f.args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(f.args)-1, len(f.args))
}
