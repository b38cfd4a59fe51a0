package main

import (
	"context"
	"fmt"

	"ngolib/internal/db"
	"ngolib/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var inspectCommand = &cli.Command{
	Name:  "inspect",
	Usage: "Print stored data for debugging",
	Subcommands: []*cli.Command{
		{
			Name:  "profile",
			Usage: "Print the profile payload a user would receive",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:     "user-id",
					Usage:    "User to build the profile for",
					Required: true,
				},
			},
			Action: func(c *cli.Context) error {
				return withRepositories(c, func(ctx context.Context, config *types.Config, repos *repositories) error {
					images, err := repos.imageStore(ctx, config)
					if err != nil {
						return err
					}

					body, err := repos.profileBuilder(images).Build(ctx, c.Int64("user-id"))
					if err != nil {
						return fmt.Errorf("failed to build profile: %w", err)
					}

					pp.Println(body)
					return nil
				})
			},
		},
		{
			Name:  "contact-messages",
			Usage: "Print the latest contact form messages",
			Flags: []cli.Flag{
				&cli.Uint64Flag{
					Name:  "limit",
					Usage: "Number of messages to print",
					Value: 20,
				},
			},
			Action: func(c *cli.Context) error {
				return withRepositories(c, func(ctx context.Context, _ *types.Config, repos *repositories) error {
					messages, err := repos.contacts.LatestContactMessages(ctx, c.Uint64("limit"))
					if err != nil {
						return err
					}

					pp.Println(messages)
					return nil
				})
			},
		},
	},
}

func withRepositories(c *cli.Context, fn func(ctx context.Context, config *types.Config, repos *repositories) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, newRepositories(pool))
}
