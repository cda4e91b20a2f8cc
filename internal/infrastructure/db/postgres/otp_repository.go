package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/autodealer/showroom/internal/core/domain"
)

// OTPRepository implements ports.OTPRepository. The (email, purpose)
// unique key keeps a single live code per pair.
type OTPRepository struct {
	db DB
}

func NewOTPRepository(db DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Replace(ctx context.Context, o *domain.OTP) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otp_codes (id, email, purpose, code_hash, payload, expires_at, consumed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)
		ON CONFLICT (email, purpose) DO UPDATE SET
			id = EXCLUDED.id,
			code_hash = EXCLUDED.code_hash,
			payload = EXCLUDED.payload,
			expires_at = EXCLUDED.expires_at,
			consumed_at = NULL,
			created_at = EXCLUDED.created_at`,
		o.ID, o.Email, o.Purpose, o.CodeHash, []byte(o.Payload), o.ExpiresAt, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) Find(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTP, error) {
	o := &domain.OTP{}
	var payload []byte
	err := r.db.QueryRow(ctx, `
		SELECT id, email, purpose, code_hash, payload, expires_at, consumed_at, created_at
		FROM otp_codes WHERE email = $1 AND purpose = $2`, email, purpose,
	).Scan(&o.ID, &o.Email, &o.Purpose, &o.CodeHash, &payload, &o.ExpiresAt, &o.ConsumedAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	o.Payload = payload
	return o, nil
}

func (r *OTPRepository) Consume(ctx context.Context, id string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE otp_codes SET consumed_at = $1 WHERE id = $2 AND consumed_at IS NULL`, at, id)
	if err != nil {
		return false, fmt.Errorf("consume otp: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
