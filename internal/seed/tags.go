package seed

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Vocabulary is the tag list NGOs and opportunities are labelled with.
// Removing a name here deletes the tag on the next seed unless something
// still uses it.
var Vocabulary = []string{
	"Animals",
	"Children",
	"Climate",
	"Culture",
	"Disaster relief",
	"Education",
	"Elderly",
	"Health",
	"Human rights",
	"Poverty",
	"Refugees",
	"Sports",
}

func SeedTags(ctx context.Context, logger logrus.FieldLogger, repo TagStore) error {
	inserted, removed, err := repo.SyncTags(ctx, Vocabulary)
	if err != nil {
		return fmt.Errorf("failed to sync tags: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"tags":     len(Vocabulary),
		"inserted": inserted,
		"removed":  removed,
	}).Info("tags synced")

	return nil
}
