package seed

import (
	"context"
	"errors"
	"fmt"

	"ngolib/internal/tags"
	"ngolib/internal/utils"
	"ngolib/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type demoAccount struct {
	Username string
	Email    string
	Role     types.Role
	NGO      *types.NewNGO
	Verified bool
	Tags     []string
}

var demoAccounts = []demoAccount{
	{Username: "admin", Email: "admin+seed@ngolib.example", Role: types.RoleAdmin},
	{Username: "ava", Email: "ava.williams+seed@ngolib.example", Role: types.RoleUser},
	{Username: "liam", Email: "liam.johnson+seed@ngolib.example", Role: types.RoleUser},
	{
		Username: "greenfuture",
		Email:    "greenfuture+seed@ngolib.example",
		Role:     types.RoleNGO,
		NGO: &types.NewNGO{
			Name:         "Green Future",
			Description:  "Tree planting and climate education in Flanders.",
			ContactEmail: "hello+greenfuture@ngolib.example",
			WebsiteURL:   "https://greenfuture.example",
			PhoneNr:      "+32 470 11 22 33",
		},
		Verified: true,
		Tags:     []string{"Climate", "Education"},
	},
	{
		Username: "pawsandclaws",
		Email:    "paws+seed@ngolib.example",
		Role:     types.RoleNGO,
		NGO: &types.NewNGO{
			Name:         "Paws & Claws",
			Description:  "Shelter and adoption for stray animals.",
			ContactEmail: "hello+paws@ngolib.example",
			PhoneNr:      "+32 470 44 55 66",
		},
		Verified: true,
		Tags:     []string{"Animals"},
	},
	{
		Username: "safeharbour",
		Email:    "safeharbour+seed@ngolib.example",
		Role:     types.RoleNGO,
		NGO: &types.NewNGO{
			Name:         "Safe Harbour",
			Description:  "Housing and language classes for refugees.",
			ContactEmail: "hello+safeharbour@ngolib.example",
		},
		Tags: []string{"Refugees", "Education", "Human rights"},
	},
}

// SeedAccounts creates the demo accounts that are missing and brings the
// NGO verification state and tags of every demo NGO in line. It returns the
// ids of the demo NGOs.
func SeedAccounts(ctx context.Context, logger logrus.FieldLogger, stores Stores, password string) ([]int64, error) {
	if password == "" {
		return nil, fmt.Errorf("a demo password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	all, err := stores.Tags.AllTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}

	var ngoIDs []int64
	created := 0
	for _, acc := range demoAccounts {
		entry := logger.WithField("email", acc.Email)

		user, err := stores.Users.UserByEmail(ctx, acc.Email)
		if err != nil {
			if !errors.Is(err, types.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to fetch demo user %s: %w", acc.Email, err)
			}

			user = &types.User{
				Username: utils.StringPtr(acc.Username),
				Email:    acc.Email,
				PwHash:   string(hash),
				Type:     string(acc.Role),
			}
			if _, err := stores.Users.Create(ctx, user, acc.NGO); err != nil {
				return nil, fmt.Errorf("failed to create demo user %s: %w", acc.Email, err)
			}
			created++
			entry.Debug("demo user created")
		}

		switch acc.Role {
		case types.RoleAdmin:
			if _, err := stores.Admins.EnsureAdmin(ctx, user.ID); err != nil {
				return nil, fmt.Errorf("failed to ensure admin row for %s: %w", acc.Email, err)
			}
		case types.RoleNGO:
			ngoID, err := seedNGO(ctx, stores, all, user.ID, acc)
			if err != nil {
				return nil, err
			}
			ngoIDs = append(ngoIDs, ngoID)
		case types.RoleUser:
		default:
			return nil, fmt.Errorf("demo account %s: %w", acc.Email, types.ErrUnknownRole)
		}
	}

	logger.WithFields(logrus.Fields{
		"accounts": len(demoAccounts),
		"created":  created,
	}).Info("demo accounts seeded")

	return ngoIDs, nil
}

func seedNGO(ctx context.Context, stores Stores, all []*types.Tag, userID int64, acc demoAccount) (int64, error) {
	contact, err := stores.NGOs.ContactByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch ngo of demo user %s: %w", acc.Email, err)
	}

	if err := stores.NGOs.SetVerified(ctx, contact.NGOID, acc.Verified); err != nil {
		return 0, fmt.Errorf("failed to set verification of %s: %w", acc.Email, err)
	}

	ids, unknown := tags.IDs(all, acc.Tags)
	if len(unknown) > 0 {
		return 0, fmt.Errorf("demo ngo %s uses tags outside the vocabulary: %v", acc.Email, unknown)
	}

	if err := stores.Tags.AttachNGOTags(ctx, contact.NGOID, ids); err != nil {
		return 0, fmt.Errorf("failed to tag demo ngo %s: %w", acc.Email, err)
	}

	return contact.NGOID, nil
}
