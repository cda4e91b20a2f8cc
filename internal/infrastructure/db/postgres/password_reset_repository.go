package postgres

import (
	"context"
	"fmt"

	"github.com/autodealer/showroom/internal/core/domain"
)

// PasswordResetRepository implements ports.PasswordResetRepository.
type PasswordResetRepository struct {
	db DB
}

func NewPasswordResetRepository(db DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, pr *domain.PasswordReset) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// ListActive returns unused, unexpired tokens for userID, newest first.
func (r *PasswordResetRepository) ListActive(ctx context.Context, userID string) ([]*domain.PasswordReset, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at FROM password_resets
		WHERE user_id = $1 AND used_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list password resets: %w", err)
	}
	defer rows.Close()

	var out []*domain.PasswordReset
	for rows.Next() {
		pr := &domain.PasswordReset{}
		if err := rows.Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.UsedAt, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan password reset: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE password_resets SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResetTokenInvalid
	}
	return nil
}
