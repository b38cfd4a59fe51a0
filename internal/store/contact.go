package store

import (
	"context"
	"fmt"
	"time"

	"ngolib/internal/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactMessageTableName = "contact_messages"

type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	SenderID  *int64    `db:"sender_id" json:"sender_id"`
	Recipient string    `db:"recipient" json:"recipient"`
	Subject   string    `db:"subject" json:"subject"`
	Body      string    `db:"body" json:"body"`
	Delivered bool      `db:"delivered" json:"delivered"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContactRepository records contact form submissions alongside the mail that
// is sent for them.
type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) RecordContactMessage(ctx context.Context, senderID *int64, recipient, subject, body string, delivered bool) (string, error) {
	id, err := utils.NewMessageID()
	if err != nil {
		return "", err
	}

	query, args, err := psql().
		Insert(contactMessageTableName).
		Columns("id", "sender_id", "recipient", "subject", "body", "delivered").
		Values(id, senderID, recipient, subject, body, delivered).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to generate insert contact message query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("failed to insert contact message: %w", err)
	}

	return id, nil
}

func (r *ContactRepository) LatestContactMessages(ctx context.Context, limit uint64) ([]*ContactMessage, error) {
	query, args, err := psql().
		Select("id", "sender_id", "recipient", "subject", "body", "delivered", "created_at").
		From(contactMessageTableName).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact messages query: %w", err)
	}

	messages := make([]*ContactMessage, 0)
	if err := pgxscan.Select(ctx, r.pool, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch contact messages: %w", err)
	}

	return messages, nil
}

func (r *ContactRepository) MarkDelivered(ctx context.Context, id string) error {
	query, args, err := psql().
		Update(contactMessageTableName).
		Set("delivered", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark delivered query: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark contact message delivered: %w", err)
	}

	return nil
}
