package main

import (
	"context"
	"fmt"

	"ngolib/internal/db"
	"ngolib/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync the tag vocabulary and load demo accounts and opportunities",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Password given to every demo account",
			EnvVars: []string{"SEED_PASSWORD"},
			Value:   "changeme",
		},
		&cli.IntFlag{
			Name:  "opportunities",
			Usage: "Number of demo opportunities to post",
			Value: 8,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Remove earlier demo opportunities first",
		},
		&cli.BoolFlag{
			Name:  "tags-only",
			Usage: "Only sync the tag vocabulary",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger.Info("connected to database")

		repos := newRepositories(pool)
		stores := seed.Stores{
			Tags:          repos.tags,
			Users:         repos.users,
			NGOs:          repos.ngos,
			Admins:        repos.admins,
			Opportunities: repos.opportunities,
		}

		if c.Bool("tags-only") {
			return seed.SeedTags(ctx, logger, stores.Tags)
		}

		return seed.Run(ctx, logger, stores, seed.Options{
			Password:      c.String("password"),
			Opportunities: c.Int("opportunities"),
			Reset:         c.Bool("reset"),
			Seed:          1,
		})
	},
}
