// Package profile assembles the role-shaped profile payload of a user.
package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"ngolib/pkg/types"
)

type UserReader interface {
	User(ctx context.Context, userID int64) (*types.User, error)
}

// ImageStore holds one profile picture per user. Image returns
// types.ErrImageNotFound when the user has none.
type ImageStore interface {
	StoreImage(ctx context.Context, userID int64, image []byte) (int64, error)
	Image(ctx context.Context, userID int64) ([]byte, error)
}

type NGOReader interface {
	InfoByOwner(ctx context.Context, userID int64) ([]*types.NGOInfo, error)
	FollowersByOwner(ctx context.Context, userID int64) ([]*types.Follower, error)
	PendingVerifications(ctx context.Context) ([]*types.NGO, error)
}

type FollowingReader interface {
	FollowingsByUser(ctx context.Context, userID int64) ([]*types.Following, error)
}

type SubscriptionReader interface {
	SubscriptionsByUser(ctx context.Context, userID int64) ([]*types.Subscription, error)
	AllSubscriptions(ctx context.Context) ([]*types.Subscription, error)
}

type DonationReader interface {
	DonationsByUser(ctx context.Context, userID int64) ([]*types.Donation, error)
	AllDonations(ctx context.Context) ([]*types.Donation, error)
	ReceivedByOwner(ctx context.Context, userID int64) ([]*types.ReceivedDonation, error)
}

type OpportunityReader interface {
	OpportunitiesByOwner(ctx context.Context, userID int64) ([]*types.Opportunity, error)
}

type TagReader interface {
	AllTags(ctx context.Context) ([]*types.Tag, error)
}

type AdminReader interface {
	AdminID(ctx context.Context, userID int64) (int64, error)
	Actions(ctx context.Context) ([]*types.AdminAction, error)
}

// Sources bundles everything a Builder reads from.
type Sources struct {
	Users         UserReader
	Images        ImageStore
	NGOs          NGOReader
	Followings    FollowingReader
	Subscriptions SubscriptionReader
	Donations     DonationReader
	Opportunities OpportunityReader
	Tags          TagReader
	Admins        AdminReader
}

type Builder struct {
	src Sources
}

func NewBuilder(src Sources) *Builder {
	return &Builder{src: src}
}

type UserProfile struct {
	User          *types.User           `json:"user"`
	Followings    []*types.Following    `json:"followings"`
	Subscriptions []*types.Subscription `json:"subscriptions"`
	Donations     []*types.Donation     `json:"donations"`
	Image         *string               `json:"image"`
}

// NGOProfile carries the owner-joined NGO rows under "user"; the field is a
// list even though an account owns a single NGO.
type NGOProfile struct {
	User       []*types.NGOInfo          `json:"user"`
	Followers  []*types.Follower         `json:"followers"`
	Followings []*types.Following        `json:"followings"`
	Donations  []*types.ReceivedDonation `json:"donations"`
	PostVolunt []*types.Opportunity      `json:"post_volunt"`
	Image      *string                   `json:"image"`
}

type AdminProfile struct {
	User             *types.User           `json:"user"`
	AdminID          int64                 `json:"adminId"`
	Image            *string               `json:"image"`
	AllSubscriptions []*types.Subscription `json:"allSubscriptions"`
	AllDonations     []*types.Donation     `json:"allDonations"`
	Tags             []*types.Tag          `json:"tags"`
	Verifications    []*types.NGO          `json:"verifications"`
	Actions          []*types.AdminAction  `json:"actions"`
}

// Build returns a *UserProfile, *NGOProfile or *AdminProfile depending on the
// stored account type of userID.
func (b *Builder) Build(ctx context.Context, userID int64) (any, error) {
	user, err := b.src.Users.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	role, err := user.Role()
	if err != nil {
		return nil, err
	}

	image, err := b.imageDataURL(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch role {
	case types.RoleUser:
		return b.buildUser(ctx, user, image)
	case types.RoleNGO:
		return b.buildNGO(ctx, user, image)
	case types.RoleAdmin:
		return b.buildAdmin(ctx, user, image)
	}

	return nil, fmt.Errorf("%w: %q", types.ErrUnknownRole, role)
}

func (b *Builder) imageDataURL(ctx context.Context, userID int64) (*string, error) {
	data, err := b.src.Images.Image(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrImageNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile image: %w", err)
	}

	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	return &url, nil
}

func (b *Builder) buildUser(ctx context.Context, user *types.User, image *string) (*UserProfile, error) {
	followings, err := b.src.Followings.FollowingsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	subscriptions, err := b.src.Subscriptions.SubscriptionsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	donations, err := b.src.Donations.DonationsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		User:          user,
		Followings:    nonNil(followings),
		Subscriptions: nonNil(subscriptions),
		Donations:     nonNil(donations),
		Image:         image,
	}, nil
}

func (b *Builder) buildNGO(ctx context.Context, user *types.User, image *string) (*NGOProfile, error) {
	info, err := b.src.NGOs.InfoByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	followers, err := b.src.NGOs.FollowersByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	followings, err := b.src.Followings.FollowingsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	donations, err := b.src.Donations.ReceivedByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	posted, err := b.src.Opportunities.OpportunitiesByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for _, o := range posted {
		o.Tags = nonNil(o.Tags)
	}

	return &NGOProfile{
		User:       nonNil(info),
		Followers:  nonNil(followers),
		Followings: nonNil(followings),
		Donations:  nonNil(donations),
		PostVolunt: nonNil(posted),
		Image:      image,
	}, nil
}

func (b *Builder) buildAdmin(ctx context.Context, user *types.User, image *string) (*AdminProfile, error) {
	adminID, err := b.src.Admins.AdminID(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	subscriptions, err := b.src.Subscriptions.AllSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	donations, err := b.src.Donations.AllDonations(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := b.src.Admins.Actions(ctx)
	if err != nil {
		return nil, err
	}

	tags, err := b.src.Tags.AllTags(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := b.src.NGOs.PendingVerifications(ctx)
	if err != nil {
		return nil, err
	}

	for _, n := range pending {
		n.Tags = nonNil(n.Tags)
	}

	return &AdminProfile{
		User:             user,
		AdminID:          adminID,
		Image:            image,
		AllSubscriptions: nonNil(subscriptions),
		AllDonations:     nonNil(donations),
		Tags:             nonNil(tags),
		Verifications:    nonNil(pending),
		Actions:          nonNil(actions),
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
