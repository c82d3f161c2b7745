package services

import (
	"context"

	"catering-backend/internal/db"
	"catering-backend/internal/models"
	"catering-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderStore interface {
	Create(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id int) (*models.Order, error)
	GetMany(ctx context.Context, ids []int) (map[int]*models.Order, error)
	Update(ctx context.Context, o *models.Order) error
	SetAdvance(ctx context.Context, id int, advance, remaining float64) error
	Delete(ctx context.Context, id int) error
}

type itemStore interface {
	Create(ctx context.Context, it *models.OrderItem) error
	ListByOrder(ctx context.Context, orderID int) ([]*models.OrderItem, error)
	Move(ctx context.Context, itemIDs []int, toOrderID int) (int, error)
	MoveAll(ctx context.Context, fromOrderID, toOrderID int, renames map[string]string) (int, error)
	DeleteByOrder(ctx context.Context, orderID int) error
}

type billStore interface {
	Create(ctx context.Context, b *models.Bill) error
	Get(ctx context.Context, id int) (*models.Bill, error)
	GetByOrderID(ctx context.Context, orderID int) (*models.Bill, error)
	Update(ctx context.Context, b *models.Bill) error
	DeleteByOrderID(ctx context.Context, orderID int) error
}

type customerStore interface {
	Get(ctx context.Context, id int) (*models.Customer, error)
}

type costLinkStore interface {
	ReassignOrder(ctx context.Context, from, to int, toNumber string) (int, error)
}

// txRepos holds the repositories bound to one transaction.
type txRepos struct {
	orders    orderStore
	items     itemStore
	bills     billStore
	customers customerStore
	costs     costLinkStore
	actions   *repositories.AdminActionLogRepository
}

// txRunner runs fn inside a single transaction.
type txRunner func(ctx context.Context, fn func(r txRepos) error) error

// repoSet is the pool-bound repositories a txRunner binds per transaction.
type repoSet struct {
	Orders     *repositories.OrderRepository
	Items      *repositories.OrderItemRepository
	Bills      *repositories.BillRepository
	Customers  *repositories.CustomerRepository
	Costs      *repositories.CostLinkRepository
	ActionLogs *repositories.AdminActionLogRepository
}

func (rs repoSet) bind(tx pgx.Tx) txRepos {
	r := txRepos{
		orders:    rs.Orders.WithTx(tx),
		items:     rs.Items.WithTx(tx),
		bills:     rs.Bills.WithTx(tx),
		customers: rs.Customers.WithTx(tx),
	}
	if rs.ActionLogs != nil {
		r.actions = rs.ActionLogs.WithTx(tx)
	}
	if rs.Costs != nil {
		r.costs = rs.Costs.WithTx(tx)
	}
	return r
}

func poolRunner(pool *pgxpool.Pool, rs repoSet) txRunner {
	return func(ctx context.Context, fn func(r txRepos) error) error {
		return db.WithTx(ctx, pool, func(tx pgx.Tx) error {
			return fn(rs.bind(tx))
		})
	}
}
