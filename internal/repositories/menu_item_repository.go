package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MenuItemRepository struct {
	DB DBTX
}

func NewMenuItemRepository(db *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{DB: db}
}

const menuItemColumns = `id, name, category, unit, price, description, is_active, created_at, updated_at`

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var m models.MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Unit, &m.Price, &m.Description,
		&m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *MenuItemRepository) Create(ctx context.Context, m *models.MenuItem) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO menu_items (name, category, unit, price, description, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		m.Name, m.Category, m.Unit, m.Price, m.Description, m.IsActive,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MenuItemRepository) Get(ctx context.Context, id int) (*models.MenuItem, error) {
	return scanMenuItem(r.DB.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id))
}

func (r *MenuItemRepository) List(ctx context.Context, category string, activeOnly bool) ([]*models.MenuItem, error) {
	var f filterBuilder
	if category != "" {
		f.add("category = $%d", category)
	}
	if activeOnly {
		f.conds = append(f.conds, "is_active")
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+menuItemColumns+` FROM menu_items `+f.where()+` ORDER BY category, name`, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) Update(ctx context.Context, m *models.MenuItem) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE menu_items SET name=$1, category=$2, unit=$3, price=$4, description=$5, is_active=$6,
		 updated_at=NOW() WHERE id=$7`,
		m.Name, m.Category, m.Unit, m.Price, m.Description, m.IsActive, m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MenuItemRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM menu_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
