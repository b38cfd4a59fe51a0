package store

import (
	"context"
	"fmt"

	"ngolib/internal/utils"
	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	adminTableName       = "admin"
	adminActionTableName = "admin_actions"
)

var adminActionColumns = utils.StructTagValues(types.AdminAction{})

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// AdminID resolves the admin row that belongs to userID.
func (r *AdminRepository) AdminID(ctx context.Context, userID int64) (int64, error) {
	query, args, err := psql().
		Select("admin_id").
		From(adminTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate admin id query: %w", err)
	}

	var adminID int64
	err = pgxscan.Get(ctx, r.pool, &adminID, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, types.ErrAdminNotFound
		}
		return 0, fmt.Errorf("failed to fetch admin id: %w", err)
	}

	return adminID, nil
}

// Actions returns the audit log, newest first.
func (r *AdminRepository) Actions(ctx context.Context) ([]*types.AdminAction, error) {
	query, args, err := psql().
		Select(adminActionColumns...).
		From(adminActionTableName).
		OrderBy("action_date DESC", "action_id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin actions query: %w", err)
	}

	actions := make([]*types.AdminAction, 0)
	err = pgxscan.Select(ctx, r.pool, &actions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch admin actions: %w", err)
	}

	return actions, nil
}

func (r *AdminRepository) LogAction(ctx context.Context, action *types.AdminAction) (int64, error) {
	query, args, err := psql().
		Insert(adminActionTableName).
		Columns("admin_id", "ngo_id", "action_type", "action_details").
		Values(action.AdminID, action.NGOID, action.ActionType, action.ActionDetails).
		Suffix("RETURNING action_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate log action query: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to log admin action: %w", err)
	}

	action.ID = id
	return id, nil
}

// EnsureAdmin gives userID an admin row if it has none and returns its id.
func (r *AdminRepository) EnsureAdmin(ctx context.Context, userID int64) (int64, error) {
	query, args, err := psql().
		Insert(adminTableName).
		Columns("user_id").
		Values(userID).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id RETURNING admin_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate ensure admin query: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to ensure admin: %w", err)
	}

	return id, nil
}
