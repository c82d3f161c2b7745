package repositories

import (
	"context"
	"time"

	"catering-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository struct {
	DB DBTX
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{DB: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp *models.CustomerOTP) error {
	return r.DB.QueryRow(ctx, `
		INSERT INTO customer_otps (phone, otp_code, ip_address, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		otp.Phone, otp.OTPCode, otp.IPAddress, otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt)
}

// GetLatestByPhone returns the most recent code issued to phone.
func (r *OTPRepository) GetLatestByPhone(ctx context.Context, phone string) (*models.CustomerOTP, error) {
	var otp models.CustomerOTP
	err := r.DB.QueryRow(ctx, `
		SELECT id, phone, otp_code, ip_address, created_at, expires_at, verified, attempts
		FROM customer_otps
		WHERE phone = $1
		ORDER BY created_at DESC
		LIMIT 1`, phone,
	).Scan(&otp.ID, &otp.Phone, &otp.OTPCode, &otp.IPAddress, &otp.CreatedAt,
		&otp.ExpiresAt, &otp.Verified, &otp.Attempts)
	if err != nil {
		return nil, notFound(err)
	}
	return &otp, nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE customer_otps SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

func (r *OTPRepository) MarkVerified(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE customer_otps SET verified = TRUE WHERE id = $1`, id)
	return err
}

// CountRecent counts codes issued to phone within window.
func (r *OTPRepository) CountRecent(ctx context.Context, phone string, window time.Duration) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_otps WHERE phone = $1 AND created_at > NOW() - $2 * INTERVAL '1 second'`,
		phone, int(window.Seconds())).Scan(&n)
	return n, err
}

// CountRecentByIP counts codes requested from ip within window.
func (r *OTPRepository) CountRecentByIP(ctx context.Context, ip string, window time.Duration) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM customer_otps WHERE ip_address = $1 AND created_at > NOW() - $2 * INTERVAL '1 second'`,
		ip, int(window.Seconds())).Scan(&n)
	return n, err
}

// DeleteExpired removes codes that expired more than a day ago.
func (r *OTPRepository) DeleteExpired(ctx context.Context) (int, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customer_otps WHERE expires_at < NOW() - INTERVAL '1 day'`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
