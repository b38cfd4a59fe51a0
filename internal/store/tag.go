package store

import (
	"context"
	"fmt"

	"ngolib/internal/db"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	tagTableName            = "tags_cause"
	ngoTagsTableName        = "ngo_tags"
	opportunityTagTableName = "volunteering_tags"
)

var tagColumns = utils.StructTagValues(types.Tag{})

type TagRepository struct {
	pool *pgxpool.Pool
}

func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

func (r *TagRepository) AllTags(ctx context.Context) ([]*types.Tag, error) {
	query, args, err := psql().
		Select(tagColumns...).
		From(tagTableName).
		OrderBy("tag_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags query: %w", err)
	}

	tags := make([]*types.Tag, 0)
	err = pgxscan.Select(ctx, r.pool, &tags, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}

	return tags, nil
}

func (r *TagRepository) TagsByName(ctx context.Context, names []string) ([]*types.Tag, error) {
	if len(names) == 0 {
		return []*types.Tag{}, nil
	}

	query, args, err := psql().
		Select(tagColumns...).
		From(tagTableName).
		Where(sq.Eq{"tag": names}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags-by-name query: %w", err)
	}

	tags := make([]*types.Tag, 0)
	err = pgxscan.Select(ctx, r.pool, &tags, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags by name: %w", err)
	}

	return tags, nil
}

// NGOPairs returns ngo/tag pairs, limited to ngoIDs when any are given.
func (r *TagRepository) NGOPairs(ctx context.Context, ngoIDs ...int64) ([]*types.TagPair, error) {
	builder := psql().
		Select("ngo_id AS entity_id", "tag_id").
		From(ngoTagsTableName)
	if len(ngoIDs) > 0 {
		builder = builder.Where(sq.Eq{"ngo_id": ngoIDs})
	}

	return r.pairs(ctx, builder)
}

func (r *TagRepository) OpportunityPairs(ctx context.Context) ([]*types.TagPair, error) {
	builder := psql().
		Select("volunteering_id AS entity_id", "tag_id").
		From(opportunityTagTableName)

	return r.pairs(ctx, builder)
}

func (r *TagRepository) pairs(ctx context.Context, builder sq.SelectBuilder) ([]*types.TagPair, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tag pairs query: %w", err)
	}

	pairs := make([]*types.TagPair, 0)
	err = pgxscan.Select(ctx, r.pool, &pairs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tag pairs: %w", err)
	}

	return pairs, nil
}

func (r *TagRepository) CreateTag(ctx context.Context, name string) (int64, error) {
	query, args, err := psql().
		Insert(tagTableName).
		Columns("tag").
		Values(name).
		Suffix("RETURNING tag_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate insert tag query: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, types.ErrDuplicateTag
		}
		return 0, fmt.Errorf("failed to insert tag: %w", err)
	}

	return id, nil
}

// DeleteTag removes a tag that no NGO uses. The usage check and the delete
// are separate statements; a pair inserted in between is caught by the
// foreign key and reported the same way.
func (r *TagRepository) DeleteTag(ctx context.Context, tagID int64) error {
	query, args, err := psql().
		Select("COUNT(*)").
		From(ngoTagsTableName).
		Where(sq.Eq{"tag_id": tagID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate tag usage query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return fmt.Errorf("failed to count tag usage: %w", err)
	}

	if count > 0 {
		return types.ErrTagInUse
	}

	query, args, err = psql().
		Delete(tagTableName).
		Where(sq.Eq{"tag_id": tagID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete tag query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return types.ErrTagInUse
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrTagNotFound
	}

	return nil
}

// SyncTags makes the tag table match names: missing names are inserted and
// unused tags outside the list are removed. Tags still referenced by a pair
// are kept.
func (r *TagRepository) SyncTags(ctx context.Context, names []string) (inserted, removed int64, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, name := range names {
		query, args, err := psql().
			Insert(tagTableName).
			Columns("tag").
			Values(name).
			Suffix("ON CONFLICT (tag) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to generate upsert tag query: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}
		inserted += tag.RowsAffected()
	}

	query, args, err := psql().
		Delete(tagTableName).
		Where(sq.NotEq{"tag": names}).
		Where("NOT EXISTS (SELECT 1 FROM " + ngoTagsTableName + " p WHERE p.tag_id = " + tagTableName + ".tag_id)").
		Where("NOT EXISTS (SELECT 1 FROM " + opportunityTagTableName + " p WHERE p.tag_id = " + tagTableName + ".tag_id)").
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate prune tags query: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prune tags: %w", err)
	}
	removed = tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted, removed, nil
}

// AttachNGOTags links tags to an NGO. Existing pairs are left alone.
func (r *TagRepository) AttachNGOTags(ctx context.Context, ngoID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}

	builder := psql().
		Insert(ngoTagsTableName).
		Columns("ngo_id", "tag_id")
	for _, tagID := range tagIDs {
		builder = builder.Values(ngoID, tagID)
	}

	query, args, err := builder.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate attach ngo tags query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if db.IsForeignKeyViolation(err) {
			return types.ErrNGONotFound
		}
		return fmt.Errorf("failed to attach ngo tags: %w", err)
	}

	return nil
}
