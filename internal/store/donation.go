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

const donationTableName = "donations"

var donationColumns = []string{
	"d.donation_id",
	"d.user_id",
	"d.ngo_id",
	"n.name AS ngo_name",
	"d.amount::text AS amount",
}

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

// CreateDonation appends a donation. The amount is stored as given; callers
// decide what amounts are acceptable.
func (r *DonationRepository) CreateDonation(ctx context.Context, userID, ngoID int64, amount types.Amount) error {
	query, args, err := psql().
		Insert(donationTableName).
		Columns("user_id", "ngo_id", "amount").
		Values(userID, ngoID, numeric(string(amount))).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return types.ErrNGONotFound
		}
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	return nil
}

func (r *DonationRepository) DonationsByUser(ctx context.Context, userID int64) ([]*types.Donation, error) {
	return r.donations(ctx, sq.Eq{"d.user_id": userID})
}

func (r *DonationRepository) AllDonations(ctx context.Context) ([]*types.Donation, error) {
	return r.donations(ctx, nil)
}

func (r *DonationRepository) donations(ctx context.Context, pred sq.Sqlizer) ([]*types.Donation, error) {
	builder := psql().
		Select(donationColumns...).
		From(donationTableName + " AS d").
		Join(ngoTableName + " AS n ON d.ngo_id = n.ngo_id").
		OrderBy("d.donation_id ASC")
	if pred != nil {
		builder = builder.Where(pred)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	donations := make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return donations, nil
}

// ReceivedByOwner lists donations to the NGO owned by userID.
func (r *DonationRepository) ReceivedByOwner(ctx context.Context, userID int64) ([]*types.ReceivedDonation, error) {
	query, args, err := psql().
		Select("u.username AS users_who_donated", "d.amount::text AS amount").
		From(donationTableName + " AS d").
		Join(ngoTableName + " AS n ON d.ngo_id = n.ngo_id").
		Join(userTableName + " AS u ON d.user_id = u.user_id").
		Where(sq.Eq{"n.user_id": userID}).
		OrderBy("d.donation_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate received donations query: %w", err)
	}

	donations := make([]*types.ReceivedDonation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch received donations: %w", err)
	}

	return donations, nil
}
