package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB DBTX
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) WithTx(tx pgx.Tx) *CustomerRepository {
	return &CustomerRepository{DB: tx}
}

const customerColumns = `id, name, phone, email, address, notes, password_hash, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.Notes,
		&c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	c.PortalAccess = c.PasswordHash != ""
	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO customers (name, phone, email, address, notes, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Name, c.Phone, c.Email, c.Address, c.Notes, c.PasswordHash,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	c.PortalAccess = c.PasswordHash != ""
	return err
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE phone = $1`, phone))
}

// List returns customers ordered by name; search matches name, phone or email.
func (r *CustomerRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Customer, error) {
	var f filterBuilder
	if search != "" {
		f.add("(name ILIKE $%[1]d OR phone ILIKE $%[1]d OR email ILIKE $%[1]d)", "%"+search+"%")
	}
	query := `SELECT ` + customerColumns + ` FROM customers ` + f.where() + ` ORDER BY LOWER(name)` + f.page(limit, offset)

	rows, err := r.DB.Query(ctx, query, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, phone=$2, email=$3, address=$4, notes=$5, updated_at=NOW()
		 WHERE id=$6`,
		c.Name, c.Phone, c.Email, c.Address, c.Notes, c.ID)
	return err
}

func (r *CustomerRepository) SetPassword(ctx context.Context, id int, hash string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET password_hash=$2, updated_at=NOW() WHERE id=$1`, id, hash)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary aggregates the customer's orders and bills.
func (r *CustomerRepository) Summary(ctx context.Context, id int) (*models.CustomerSummary, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s := &models.CustomerSummary{Customer: c}
	err = r.DB.QueryRow(ctx, `
		SELECT COUNT(o.id),
			COALESCE(SUM(b.total_amount), 0),
			COALESCE(SUM(b.paid_amount), 0),
			COALESCE(SUM(b.remaining_amount), 0),
			MAX(o.created_at)
		FROM orders o
		LEFT JOIN bills b ON b.order_id = o.id
		WHERE o.customer_id = $1 AND o.status <> 'cancelled'`, id,
	).Scan(&s.OrderCount, &s.TotalBilled, &s.TotalPaid, &s.Outstanding, &s.LastOrderAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
