package store

import (
	"context"
	"fmt"

	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionTableName = "subscriptions"

var subscriptionColumns = []string{
	"s.subscription_id",
	"s.user_id",
	"s.ngo_id",
	"n.name AS ngo_name",
	"s.amount::text AS amount",
	"s.status",
}

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// SubscriptionsByUser returns active and canceled subscriptions alike.
func (r *SubscriptionRepository) SubscriptionsByUser(ctx context.Context, userID int64) ([]*types.Subscription, error) {
	return r.subscriptions(ctx, sq.Eq{"s.user_id": userID})
}

func (r *SubscriptionRepository) AllSubscriptions(ctx context.Context) ([]*types.Subscription, error) {
	return r.subscriptions(ctx, nil)
}

func (r *SubscriptionRepository) subscriptions(ctx context.Context, pred sq.Sqlizer) ([]*types.Subscription, error) {
	builder := psql().
		Select(subscriptionColumns...).
		From(subscriptionTableName + " AS s").
		Join(ngoTableName + " AS n ON s.ngo_id = n.ngo_id").
		OrderBy("s.subscription_id ASC")
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscriptions query: %w", err)
	}

	subscriptions := make([]*types.Subscription, 0)
	err = pgxscan.Select(ctx, r.pool, &subscriptions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}

	return subscriptions, nil
}

// CancelSubscription flips the user's subscription to the NGO to canceled.
// Rows are never deleted; no matching row is not an error.
func (r *SubscriptionRepository) CancelSubscription(ctx context.Context, userID, ngoID int64) (int64, error) {
	query, args, err := psql().
		Update(subscriptionTableName).
		Set("status", types.SubscriptionCanceled).
		Where(sq.Eq{"user_id": userID, "ngo_id": ngoID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate cancel subscription query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel subscription: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpdateSubscriptionStatus sets the status and returns the NGO the
// subscription belongs to.
func (r *SubscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, subscriptionID int64, status types.SubscriptionStatus) (int64, error) {
	query, args, err := psql().
		Update(subscriptionTableName).
		Set("status", status).
		Where(sq.Eq{"subscription_id": subscriptionID}).
		Suffix("RETURNING ngo_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate update subscription status query: %w", err)
	}

	var ngoID int64
	err = pgxscan.Get(ctx, r.pool, &ngoID, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, types.ErrSubscriptionNotFound
		}
		return 0, fmt.Errorf("failed to update subscription status: %w", err)
	}

	return ngoID, nil
}
