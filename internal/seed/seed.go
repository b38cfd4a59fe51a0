// Package seed fills a database with the tag vocabulary and demo data. The
// definitions in this package are the source of truth: running the seed
// again converges the database on them.
package seed

import (
	"context"
	"time"

	"ngolib/pkg/types"
)

type TagStore interface {
	AllTags(ctx context.Context) ([]*types.Tag, error)
	SyncTags(ctx context.Context, names []string) (inserted, removed int64, err error)
	AttachNGOTags(ctx context.Context, ngoID int64, tagIDs []int64) error
}

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User, ngo *types.NewNGO) (int64, error)
}

type NGOStore interface {
	ContactByOwner(ctx context.Context, userID int64) (*types.NGOContact, error)
	SetVerified(ctx context.Context, ngoID int64, verified bool) error
}

type AdminStore interface {
	EnsureAdmin(ctx context.Context, userID int64) (int64, error)
}

type OpportunityStore interface {
	CreateOpportunity(ctx context.Context, opp *types.Opportunity, tagIDs []int64) (int64, error)
	DeleteSeeded(ctx context.Context, prefix string) (int64, error)
}

// Stores bundles the repositories a full seed touches.
type Stores struct {
	Tags          TagStore
	Users         UserStore
	NGOs          NGOStore
	Admins        AdminStore
	Opportunities OpportunityStore
}

// Options control the demo data part of a seed.
type Options struct {
	Password      string
	Opportunities int
	Reset         bool
	Now           time.Time
	Seed          int64
}
