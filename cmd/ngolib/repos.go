package main

import (
	"context"

	"ngolib/internal/profile"
	"ngolib/internal/storage"
	"ngolib/internal/store"
	"ngolib/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repositories struct {
	users         *store.UserRepository
	ngos          *store.NGORepository
	tags          *store.TagRepository
	opportunities *store.OpportunityRepository
	donations     *store.DonationRepository
	subscriptions *store.SubscriptionRepository
	followers     *store.FollowerRepository
	admins        *store.AdminRepository
	resets        *store.PasswordResetRepository
	contacts      *store.ContactRepository
}

func newRepositories(pool *pgxpool.Pool) *repositories {
	return &repositories{
		users:         store.NewUserRepository(pool),
		ngos:          store.NewNGORepository(pool),
		tags:          store.NewTagRepository(pool),
		opportunities: store.NewOpportunityRepository(pool),
		donations:     store.NewDonationRepository(pool),
		subscriptions: store.NewSubscriptionRepository(pool),
		followers:     store.NewFollowerRepository(pool),
		admins:        store.NewAdminRepository(pool),
		resets:        store.NewPasswordResetRepository(pool),
		contacts:      store.NewContactRepository(pool),
	}
}

// imageStore is S3 when S3_BUCKET_NAME is set and the users table otherwise.
func (r *repositories) imageStore(ctx context.Context, config *types.Config) (profile.ImageStore, error) {
	if config.S3BucketName == "" {
		return r.users, nil
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return storage.NewS3ImageStore(s3.NewFromConfig(awsConfig), config.S3BucketName, config.S3ImagePrefix), nil
}

// profileBuilder reads profile images from images, see imageStore.
func (r *repositories) profileBuilder(images profile.ImageStore) *profile.Builder {
	return profile.NewBuilder(profile.Sources{
		Users:         r.users,
		Images:        images,
		NGOs:          r.ngos,
		Followings:    r.followers,
		Subscriptions: r.subscriptions,
		Donations:     r.donations,
		Opportunities: r.opportunities,
		Tags:          r.tags,
		Admins:        r.admins,
	})
}
