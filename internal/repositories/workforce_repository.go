package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkforceRepository struct {
	DB DBTX
}

func NewWorkforceRepository(db *pgxpool.Pool) *WorkforceRepository {
	return &WorkforceRepository{DB: db}
}

// ======================================
// Members
// ======================================

const memberColumns = `id, name, phone, role, daily_wage, is_active, notes, created_at, updated_at`

func scanMember(row pgx.Row) (*models.WorkforceMember, error) {
	var m models.WorkforceMember
	err := row.Scan(&m.ID, &m.Name, &m.Phone, &m.Role, &m.DailyWage, &m.IsActive, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *WorkforceRepository) CreateMember(ctx context.Context, m *models.WorkforceMember) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO workforce_members (name, phone, role, daily_wage, is_active, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		m.Name, m.Phone, m.Role, m.DailyWage, m.IsActive, m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *WorkforceRepository) GetMember(ctx context.Context, id int) (*models.WorkforceMember, error) {
	return scanMember(r.DB.QueryRow(ctx, `SELECT `+memberColumns+` FROM workforce_members WHERE id = $1`, id))
}

func (r *WorkforceRepository) ListMembers(ctx context.Context, activeOnly bool) ([]*models.WorkforceMember, error) {
	query := `SELECT ` + memberColumns + ` FROM workforce_members`
	if activeOnly {
		query += ` WHERE is_active`
	}
	rows, err := r.DB.Query(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*models.WorkforceMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *WorkforceRepository) UpdateMember(ctx context.Context, m *models.WorkforceMember) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE workforce_members SET name = $2, phone = $3, role = $4, daily_wage = $5,
			is_active = $6, notes = $7, updated_at = NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Phone, m.Role, m.DailyWage, m.IsActive, m.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMember fails with a foreign key error while payments reference the member.
func (r *WorkforceRepository) DeleteMember(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM workforce_members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WorkforceRepository) MemberSummary(ctx context.Context, id int) (*models.WorkforceMemberSummary, error) {
	m, err := r.GetMember(ctx, id)
	if err != nil {
		return nil, err
	}
	s := &models.WorkforceMemberSummary{Member: m}
	err = r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COUNT(*), MAX(payment_date)::timestamptz
		FROM workforce_payments WHERE member_id = $1`, id,
	).Scan(&s.TotalPaid, &s.PaymentCount, &s.LastPaymentAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ======================================
// Payments
// ======================================

const paymentSelect = `
	SELECT p.id, p.member_id, m.name, p.amount, p.payment_date, p.payment_method, p.notes,
		p.order_id, p.bulk_allocations, p.created_by, p.created_at, p.updated_at
	FROM workforce_payments p
	JOIN workforce_members m ON m.id = p.member_id`

func scanWorkforcePayment(row pgx.Row) (*models.WorkforcePayment, error) {
	var p models.WorkforcePayment
	err := row.Scan(&p.ID, &p.MemberID, &p.MemberName, &p.Amount, &p.PaymentDate, &p.PaymentMethod,
		&p.Notes, &p.OrderID, &p.BulkAllocations, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if p.BulkAllocations == nil {
		p.BulkAllocations = []models.Allocation{}
	}
	return &p, nil
}

func (r *WorkforceRepository) CreatePayment(ctx context.Context, p *models.WorkforcePayment) error {
	p.BulkAllocations = allocationsOrEmpty(p.BulkAllocations)
	return r.DB.QueryRow(ctx, `
		INSERT INTO workforce_payments (member_id, amount, payment_date, payment_method, notes,
			order_id, bulk_allocations, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		p.MemberID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Notes,
		p.OrderID, p.BulkAllocations, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *WorkforceRepository) GetPayment(ctx context.Context, id int) (*models.WorkforcePayment, error) {
	return scanWorkforcePayment(r.DB.QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
}

func (r *WorkforceRepository) ListPayments(ctx context.Context, memberID int, from, to string) ([]*models.WorkforcePayment, error) {
	var f filterBuilder
	if memberID > 0 {
		f.add("p.member_id = $%d", memberID)
	}
	if from != "" {
		f.add("p.payment_date >= $%d::date", from)
	}
	if to != "" {
		f.add("p.payment_date <= $%d::date", to)
	}

	rows, err := r.DB.Query(ctx, paymentSelect+" "+f.where()+" ORDER BY p.payment_date DESC, p.id DESC", f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.WorkforcePayment{}
	for rows.Next() {
		p, err := scanWorkforcePayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *WorkforceRepository) UpdatePayment(ctx context.Context, p *models.WorkforcePayment) error {
	p.BulkAllocations = allocationsOrEmpty(p.BulkAllocations)
	err := r.DB.QueryRow(ctx, `
		UPDATE workforce_payments SET member_id = $2, amount = $3, payment_date = $4,
			payment_method = $5, notes = $6, order_id = $7, bulk_allocations = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.MemberID, p.Amount, p.PaymentDate, p.PaymentMethod, p.Notes, p.OrderID, p.BulkAllocations,
	).Scan(&p.UpdatedAt)
	return notFound(err)
}

func (r *WorkforceRepository) DeletePayment(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM workforce_payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
