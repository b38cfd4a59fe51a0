package store

import (
	"context"
	"fmt"
	"time"

	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const passwordResetTableName = "password_resets"

// PasswordResetRepository keeps one outstanding reset token per user. Tokens
// are stored hashed; callers pass the hash, never the raw token.
type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetRepository(pool *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{pool: pool}
}

func (r *PasswordResetRepository) StoreToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	query, args, err := psql().
		Insert(passwordResetTableName).
		Columns("user_id", "token_hash", "expires_at").
		Values(userID, tokenHash, expiresAt).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate store reset token query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return nil
}

// UserByToken resolves an unexpired token to its user.
func (r *PasswordResetRepository) UserByToken(ctx context.Context, tokenHash string, now time.Time) (*types.PasswordReset, error) {
	return r.liveToken(ctx, sq.Eq{"pr.token_hash": tokenHash}, now)
}

// TokenByUser returns the user's outstanding token if it has not expired.
func (r *PasswordResetRepository) TokenByUser(ctx context.Context, userID int64, now time.Time) (*types.PasswordReset, error) {
	return r.liveToken(ctx, sq.Eq{"pr.user_id": userID}, now)
}

func (r *PasswordResetRepository) liveToken(ctx context.Context, match sq.Eq, now time.Time) (*types.PasswordReset, error) {
	query, args, err := psql().
		Select("pr.user_id", "u.email", "pr.token_hash", "pr.expires_at").
		From(passwordResetTableName + " AS pr").
		Join(userTableName + " AS u ON pr.user_id = u.user_id").
		Where(match).
		Where(sq.Gt{"pr.expires_at": now}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token query: %w", err)
	}

	var reset types.PasswordReset
	err = pgxscan.Get(ctx, r.pool, &reset, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("failed to fetch reset token: %w", err)
	}

	return &reset, nil
}

func (r *PasswordResetRepository) ConsumeToken(ctx context.Context, userID int64) error {
	query, args, err := psql().
		Delete(passwordResetTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate consume reset token query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return nil
}

// PurgeExpired deletes every token that expired before now.
func (r *PasswordResetRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql().
		Delete(passwordResetTableName).
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate purge reset tokens query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge reset tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}
