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
	ngoTableName          = "ngo"
	ngoFollowersTableName = "ngo_followers"
)

var ngoColumns = utils.StructTagValues(types.NGO{})

type NGORepository struct {
	pool *pgxpool.Pool
}

func NewNGORepository(pool *pgxpool.Pool) *NGORepository {
	return &NGORepository{pool: pool}
}

func (r *NGORepository) AllNGOs(ctx context.Context) ([]*types.NGO, error) {
	query, args, err := psql().
		Select(ngoColumns...).
		From(ngoTableName).
		OrderBy("ngo_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngos query: %w", err)
	}

	ngos := make([]*types.NGO, 0)
	err = pgxscan.Select(ctx, r.pool, &ngos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngos: %w", err)
	}

	return ngos, nil
}

// DisplayInfo loads the public detail view of an NGO. The owning user must
// exist for the NGO to be shown.
func (r *NGORepository) DisplayInfo(ctx context.Context, ngoID int64) (*types.NGO, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("n", ngoColumns)...).
		From(ngoTableName + " AS n").
		Join(userTableName + " AS u ON n.user_id = u.user_id").
		Where(sq.Eq{"n.ngo_id": ngoID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo display query: %w", err)
	}

	var ngo types.NGO
	err = pgxscan.Get(ctx, r.pool, &ngo, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNGONotFound
		}
		return nil, fmt.Errorf("failed to fetch ngo display info: %w", err)
	}

	return &ngo, nil
}

// InfoByOwner returns the NGO rows owned by userID joined with the owner.
func (r *NGORepository) InfoByOwner(ctx context.Context, userID int64) ([]*types.NGOInfo, error) {
	query, args, err := psql().
		Select("n.ngo_id", "u.user_id", "n.name", "n.description", "n.website_url", "n.contact_email", "n.phone_nr", "u.type", "u.username").
		From(ngoTableName + " AS n").
		Join(userTableName + " AS u ON n.user_id = u.user_id").
		Where(sq.Eq{"n.user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo info query: %w", err)
	}

	infos := make([]*types.NGOInfo, 0)
	err = pgxscan.Select(ctx, r.pool, &infos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngo info: %w", err)
	}

	return infos, nil
}

func (r *NGORepository) ContactByOwner(ctx context.Context, userID int64) (*types.NGOContact, error) {
	query, args, err := psql().
		Select("ngo_id", "contact_email", "phone_nr").
		From(ngoTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo contact query: %w", err)
	}

	var contact types.NGOContact
	err = pgxscan.Get(ctx, r.pool, &contact, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNGONotFound
		}
		return nil, fmt.Errorf("failed to fetch ngo contact: %w", err)
	}

	return &contact, nil
}

// FollowersByOwner lists the usernames following any NGO owned by userID.
func (r *NGORepository) FollowersByOwner(ctx context.Context, userID int64) ([]*types.Follower, error) {
	query, args, err := psql().
		Select("u.username").
		From(ngoFollowersTableName + " AS nf").
		Join(userTableName + " AS u ON nf.user_id = u.user_id").
		Where(sq.Expr("nf.ngo_id IN (SELECT ngo_id FROM "+ngoTableName+" WHERE user_id = ?)", userID)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ngo followers query: %w", err)
	}

	followers := make([]*types.Follower, 0)
	err = pgxscan.Select(ctx, r.pool, &followers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ngo followers: %w", err)
	}

	return followers, nil
}

func (r *NGORepository) PendingVerifications(ctx context.Context) ([]*types.NGO, error) {
	query, args, err := psql().
		Select(ngoColumns...).
		From(ngoTableName).
		Where(sq.Or{sq.Eq{"verified": nil}, sq.Expr("verified = B'0'")}).
		OrderBy("ngo_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pending verifications query: %w", err)
	}

	ngos := make([]*types.NGO, 0)
	err = pgxscan.Select(ctx, r.pool, &ngos, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending verifications: %w", err)
	}

	return ngos, nil
}

func (r *NGORepository) SetVerified(ctx context.Context, ngoID int64, verified bool) error {
	query, args, err := psql().
		Update(ngoTableName).
		Set("verified", types.Bit(verified)).
		Where(sq.Eq{"ngo_id": ngoID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set verified query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set ngo verified: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNGONotFound
	}

	return nil
}
