package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminActionLogRepository struct {
	DB DBTX
}

func NewAdminActionLogRepository(db *pgxpool.Pool) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: db}
}

func (r *AdminActionLogRepository) WithTx(tx pgx.Tx) *AdminActionLogRepository {
	return &AdminActionLogRepository{DB: tx}
}

// CreateActionLog records an admin action
func (r *AdminActionLogRepository) CreateActionLog(ctx context.Context, log *models.AdminActionLog) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO admin_action_logs (
			admin_user_id, action_type, target_type, target_id,
			description, old_value, new_value, ip_address, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		log.AdminUserID, log.ActionType, log.TargetType, log.TargetID,
		log.Description, log.OldValue, log.NewValue, log.IPAddress,
	)
	return err
}

// List returns the most recent actions, optionally filtered by action type.
func (r *AdminActionLogRepository) List(ctx context.Context, actionType string, limit int) ([]*models.AdminActionLog, error) {
	if limit <= 0 {
		limit = 200
	}

	var f filterBuilder
	if actionType != "" {
		f.add("al.action_type = $%d", actionType)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT al.id, al.admin_user_id, u.name, al.action_type, al.target_type, al.target_id,
			al.description, al.old_value, al.new_value, al.ip_address, al.created_at
		FROM admin_action_logs al
		JOIN users u ON al.admin_user_id = u.id
		`+f.where()+`
		ORDER BY al.created_at DESC`+f.page(limit, 0), f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.AdminActionLog{}
	for rows.Next() {
		var l models.AdminActionLog
		if err := rows.Scan(&l.ID, &l.AdminUserID, &l.AdminName, &l.ActionType, &l.TargetType, &l.TargetID,
			&l.Description, &l.OldValue, &l.NewValue, &l.IPAddress, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
