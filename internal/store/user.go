package store

import (
	"context"
	"errors"
	"fmt"

	"ngolib/internal/db"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID int64) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"user_id": userID})
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) userWhere(ctx context.Context, pred sq.Eq) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// Create inserts the user and, for NGO signups, the owned ngo row in one
// transaction so an NGO account never exists without its organisation.
func (r *UserRepository) Create(ctx context.Context, user *types.User, ngo *types.NewNGO) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query, args, err := psql().
		Insert(userTableName).
		Columns("username", "email", "pw_hash", "type").
		Values(user.Username, user.Email, user.PwHash, user.Type).
		Suffix("RETURNING user_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate create user query: %w", err)
	}

	var userID int64
	err = tx.QueryRow(ctx, query, args...).Scan(&userID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, types.ErrEmailInUse
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	if ngo != nil {
		query, args, err = psql().
			Insert(ngoTableName).
			Columns("name", "description", "contact_email", "website_url", "phone_nr", "user_id").
			Values(ngo.Name, nullable(ngo.Description), nullable(ngo.ContactEmail), nullable(ngo.WebsiteURL), nullable(ngo.PhoneNr), userID).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to generate create ngo query: %w", err)
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("failed to create ngo: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.ID = userID
	return userID, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, pwHash string) error {
	query, args, err := psql().
		Update(userTableName).
		Set("pw_hash", pwHash).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update password query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

// StoreImage writes the profile picture blob and returns the affected rows.
func (r *UserRepository) StoreImage(ctx context.Context, userID int64, image []byte) (int64, error) {
	query, args, err := psql().
		Update(userTableName).
		Set("image", image).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate store image query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to store image: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Image returns the stored picture or ErrImageNotFound when there is none.
func (r *UserRepository) Image(ctx context.Context, userID int64) ([]byte, error) {
	query, args, err := psql().
		Select("image").
		From(userTableName).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate image query: %w", err)
	}

	var image []byte
	err = r.pool.QueryRow(ctx, query, args...).Scan(&image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}

	if len(image) == 0 {
		return nil, types.ErrImageNotFound
	}

	return image, nil
}
