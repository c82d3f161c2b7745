package repositories

import (
	"context"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginLogRepository struct {
	DB DBTX
}

func NewLoginLogRepository(db *pgxpool.Pool) *LoginLogRepository {
	return &LoginLogRepository{DB: db}
}

// CreateLoginLog records a new login event
func (r *LoginLogRepository) CreateLoginLog(ctx context.Context, userID int, ipAddress, userAgent string) (int, error) {
	var logID int
	err := r.DB.QueryRow(ctx,
		`INSERT INTO login_logs (user_id, login_time, ip_address, user_agent)
		 VALUES ($1, NOW(), $2, $3)
		 RETURNING id`,
		userID, ipAddress, userAgent).Scan(&logID)
	return logID, err
}

// UpdateLogoutTimeByUser records logout for the most recent open login of a user
func (r *LoginLogRepository) UpdateLogoutTimeByUser(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE login_logs
		SET logout_time = NOW()
		WHERE id = (
			SELECT id FROM login_logs
			WHERE user_id = $1 AND logout_time IS NULL
			ORDER BY login_time DESC
			LIMIT 1
		)`, userID)
	return err
}

func (r *LoginLogRepository) List(ctx context.Context, limit int) ([]*models.LoginLog, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.user_id, u.name, l.login_time, l.logout_time, l.ip_address, l.user_agent
		FROM login_logs l
		JOIN users u ON u.id = l.user_id
		ORDER BY l.login_time DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []*models.LoginLog{}
	for rows.Next() {
		var l models.LoginLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.LoginTime, &l.LogoutTime, &l.IPAddress, &l.UserAgent); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
