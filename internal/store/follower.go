package store

import (
	"context"
	"fmt"

	"ngolib/internal/db"
	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowerRepository struct {
	pool *pgxpool.Pool
}

func NewFollowerRepository(pool *pgxpool.Pool) *FollowerRepository {
	return &FollowerRepository{pool: pool}
}

func (r *FollowerRepository) FollowingsByUser(ctx context.Context, userID int64) ([]*types.Following, error) {
	query, args, err := psql().
		Select("n.ngo_id", "n.name AS ngo_name").
		From(ngoFollowersTableName + " AS nf").
		Join(ngoTableName + " AS n ON nf.ngo_id = n.ngo_id").
		Where(sq.Eq{"nf.user_id": userID}).
		OrderBy("n.ngo_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate followings query: %w", err)
	}

	followings := make([]*types.Following, 0)
	err = pgxscan.Select(ctx, r.pool, &followings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch followings: %w", err)
	}

	return followings, nil
}

// Follow is idempotent; following twice leaves a single row.
func (r *FollowerRepository) Follow(ctx context.Context, userID, ngoID int64) error {
	query, args, err := psql().
		Insert(ngoFollowersTableName).
		Columns("user_id", "ngo_id").
		Values(userID, ngoID).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate follow query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return types.ErrNGONotFound
		}
		return fmt.Errorf("failed to follow ngo: %w", err)
	}

	return nil
}

// Unfollow removes the relation. Removing one that does not exist is not an
// error.
func (r *FollowerRepository) Unfollow(ctx context.Context, userID, ngoID int64) (int64, error) {
	query, args, err := psql().
		Delete(ngoFollowersTableName).
		Where(sq.Eq{"user_id": userID, "ngo_id": ngoID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unfollow query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to unfollow ngo: %w", err)
	}

	return tag.RowsAffected(), nil
}
