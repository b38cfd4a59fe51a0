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

const opportunityTableName = "volunteering_opportunities"

// "end" is a reserved word, so the column list is spelled out with it quoted.
var opportunityColumns = []string{
	"opportunity_id",
	"ngo_id",
	"title",
	"description",
	"location",
	"start",
	`"end"`,
	"contact_email",
	"contact_phone",
}

type OpportunityRepository struct {
	pool *pgxpool.Pool
}

func NewOpportunityRepository(pool *pgxpool.Pool) *OpportunityRepository {
	return &OpportunityRepository{pool: pool}
}

func (r *OpportunityRepository) AllOpportunities(ctx context.Context) ([]*types.Opportunity, error) {
	query, args, err := psql().
		Select(opportunityColumns...).
		From(opportunityTableName).
		OrderBy("opportunity_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate opportunities query: %w", err)
	}

	opportunities := make([]*types.Opportunity, 0)
	err = pgxscan.Select(ctx, r.pool, &opportunities, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch opportunities: %w", err)
	}

	return opportunities, nil
}

// OpportunitiesByOwner lists what the NGO owned by userID has posted.
func (r *OpportunityRepository) OpportunitiesByOwner(ctx context.Context, userID int64) ([]*types.Opportunity, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("o", opportunityColumns)...).
		From(opportunityTableName + " AS o").
		Join(ngoTableName + " AS n ON o.ngo_id = n.ngo_id").
		Where(sq.Eq{"n.user_id": userID}).
		OrderBy("o.opportunity_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate owner opportunities query: %w", err)
	}

	opportunities := make([]*types.Opportunity, 0)
	err = pgxscan.Select(ctx, r.pool, &opportunities, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch owner opportunities: %w", err)
	}

	return opportunities, nil
}

// CreateOpportunity inserts the opportunity and its tag pairs and returns
// the generated id.
func (r *OpportunityRepository) CreateOpportunity(ctx context.Context, opp *types.Opportunity, tagIDs []int64) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Insert(opportunityTableName).
		Columns("title", "description", "location", "start", `"end"`, "contact_email", "contact_phone", "ngo_id").
		Values(opp.Title, opp.Description, opp.Location, opp.Start, opp.End, opp.ContactEmail, opp.ContactPhone, opp.NGOID).
		Suffix("RETURNING opportunity_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate insert opportunity query: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert opportunity: %w", err)
	}

	if len(tagIDs) > 0 {
		builder := psql().
			Insert(opportunityTagTableName).
			Columns("volunteering_id", "tag_id")
		for _, tagID := range tagIDs {
			builder = builder.Values(id, tagID)
		}

		query, args, err = builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to generate opportunity tags query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to insert opportunity tags: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	opp.ID = id
	return id, nil
}

// DeleteSeeded removes opportunities whose title starts with prefix, along
// with their tag pairs.
func (r *OpportunityRepository) DeleteSeeded(ctx context.Context, prefix string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	seeded := psql().
		Select("opportunity_id").
		From(opportunityTableName).
		Where(sq.Like{"title": prefix + "%"})

	query, args, err := psql().
		Delete(opportunityTagTableName).
		Where(sq.Expr("volunteering_id IN (?)", seeded)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete seeded tags query: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to delete seeded opportunity tags: %w", err)
	}

	query, args, err = psql().
		Delete(opportunityTableName).
		Where(sq.Like{"title": prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete seeded opportunities query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete seeded opportunities: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tag.RowsAffected(), nil
}
