package server

import (
	"context"
	"time"

	"ngolib/pkg/types"
)

type UserStore interface {
	User(ctx context.Context, userID int64) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User, ngo *types.NewNGO) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, pwHash string) error
}

type NGOStore interface {
	AllNGOs(ctx context.Context) ([]*types.NGO, error)
	DisplayInfo(ctx context.Context, ngoID int64) (*types.NGO, error)
	ContactByOwner(ctx context.Context, userID int64) (*types.NGOContact, error)
	PendingVerifications(ctx context.Context) ([]*types.NGO, error)
	SetVerified(ctx context.Context, ngoID int64, verified bool) error
}

type TagStore interface {
	AllTags(ctx context.Context) ([]*types.Tag, error)
	NGOPairs(ctx context.Context, ngoIDs ...int64) ([]*types.TagPair, error)
	OpportunityPairs(ctx context.Context) ([]*types.TagPair, error)
	CreateTag(ctx context.Context, name string) (int64, error)
	DeleteTag(ctx context.Context, tagID int64) error
}

type OpportunityStore interface {
	AllOpportunities(ctx context.Context) ([]*types.Opportunity, error)
	CreateOpportunity(ctx context.Context, opp *types.Opportunity, tagIDs []int64) (int64, error)
}

type DonationStore interface {
	CreateDonation(ctx context.Context, userID, ngoID int64, amount types.Amount) error
}

type SubscriptionStore interface {
	CancelSubscription(ctx context.Context, userID, ngoID int64) (int64, error)
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID int64, status types.SubscriptionStatus) (int64, error)
}

type FollowerStore interface {
	Follow(ctx context.Context, userID, ngoID int64) error
	Unfollow(ctx context.Context, userID, ngoID int64) (int64, error)
}

type AdminStore interface {
	AdminID(ctx context.Context, userID int64) (int64, error)
	LogAction(ctx context.Context, action *types.AdminAction) (int64, error)
}

type ResetStore interface {
	StoreToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	UserByToken(ctx context.Context, tokenHash string, now time.Time) (*types.PasswordReset, error)
	TokenByUser(ctx context.Context, userID int64, now time.Time) (*types.PasswordReset, error)
	ConsumeToken(ctx context.Context, userID int64) error
}

type ContactStore interface {
	RecordContactMessage(ctx context.Context, senderID *int64, recipient, subject, body string, delivered bool) (string, error)
	MarkDelivered(ctx context.Context, id string) error
}

type ProfileBuilder interface {
	Build(ctx context.Context, userID int64) (any, error)
}
