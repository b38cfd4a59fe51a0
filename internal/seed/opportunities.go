package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ngolib/internal/utils"
	"ngolib/pkg/types"

	"github.com/sirupsen/logrus"
)

// SeedTitlePrefix marks demo opportunities so a reset can find them again.
const SeedTitlePrefix = "[seed] "

var demoTitles = []string{
	"Weekend tree planting",
	"Homework club helper",
	"Shelter dog walker",
	"Dutch conversation partner",
	"Food bank sorting shift",
	"Beach cleanup crew",
	"Charity run marshal",
	"Museum guide for kids",
}

var demoLocations = []string{
	"Antwerp",
	"Brussels",
	"Ghent",
	"Leuven",
	"Ostend",
	"Bruges",
}

// SeedOpportunities posts count demo opportunities spread over ngoIDs. With
// reset set, earlier demo opportunities are removed first.
func SeedOpportunities(ctx context.Context, logger logrus.FieldLogger, stores Stores, ngoIDs []int64, opts Options) error {
	if opts.Reset {
		removed, err := stores.Opportunities.DeleteSeeded(ctx, SeedTitlePrefix)
		if err != nil {
			return fmt.Errorf("failed to reset demo opportunities: %w", err)
		}
		logger.WithField("removed", removed).Info("demo opportunities reset")
	}

	if opts.Opportunities <= 0 {
		logger.Info("skipping demo opportunities because count <= 0")
		return nil
	}
	if len(ngoIDs) == 0 {
		return fmt.Errorf("no demo ngos to post opportunities for")
	}

	all, err := stores.Tags.AllTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch tags: %w", err)
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	for i := range opts.Opportunities {
		start := now.AddDate(0, 0, 7+rng.Intn(90)).Truncate(24 * time.Hour)
		end := start.AddDate(0, 0, 1+rng.Intn(14))

		opp := &types.Opportunity{
			NGOID:        ngoIDs[i%len(ngoIDs)],
			Title:        SeedTitlePrefix + demoTitles[rng.Intn(len(demoTitles))],
			Description:  utils.StringPtr("Demo opportunity created by the seed command."),
			Location:     demoLocations[rng.Intn(len(demoLocations))],
			Start:        &start,
			End:          &end,
			ContactEmail: utils.StringPtr("volunteer+seed@ngolib.example"),
		}

		var tagIDs []int64
		if len(all) > 0 {
			tagIDs = append(tagIDs, all[rng.Intn(len(all))].ID)
		}

		if _, err := stores.Opportunities.CreateOpportunity(ctx, opp, tagIDs); err != nil {
			return fmt.Errorf("failed to create demo opportunity %d: %w", i+1, err)
		}
	}

	logger.WithField("count", opts.Opportunities).Info("demo opportunities seeded")
	return nil
}

// Run performs a full seed: vocabulary, accounts, then opportunities.
func Run(ctx context.Context, logger logrus.FieldLogger, stores Stores, opts Options) error {
	if err := SeedTags(ctx, logger, stores.Tags); err != nil {
		return err
	}

	ngoIDs, err := SeedAccounts(ctx, logger, stores, opts.Password)
	if err != nil {
		return err
	}

	return SeedOpportunities(ctx, logger, stores, ngoIDs, opts)
}
