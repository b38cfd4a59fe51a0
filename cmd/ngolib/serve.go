package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ngolib/internal/db"
	"ngolib/internal/jobs"
	"ngolib/internal/mail"
	"ngolib/internal/payment"
	"ngolib/internal/server"
	"ngolib/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	var rdb *redis.Client
	if config.RedisURL != "" {
		rdb, err = connectRedis(ctx, config.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
	}

	sessionStore, err := session.NewStore(config, rdb)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	repos := newRepositories(pool)

	images, err := repos.imageStore(ctx, config)
	if err != nil {
		return err
	}
	if config.S3BucketName != "" {
		logger.WithField("bucket", config.S3BucketName).Info("profile images stored in s3")
	}

	var payments payment.Processor
	if config.StripeSecretKey != "" {
		payments = payment.NewStripeProcessor(config)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, donations are recorded without a charge")
	}

	srv, err := server.New(config, logger, server.Deps{
		Users:         repos.users,
		NGOs:          repos.ngos,
		Tags:          repos.tags,
		Opportunities: repos.opportunities,
		Donations:     repos.donations,
		Subscriptions: repos.subscriptions,
		Followers:     repos.followers,
		Admins:        repos.admins,
		Resets:        repos.resets,
		Contacts:      repos.contacts,
		Images:        images,
		Profiles:      repos.profileBuilder(images),

		Sessions: session.NewManager(logger, sessionStore, config.CookieName),
		Limiter:  server.NewRateLimiter(logger, rdb, server.PerMinute(config.RateLimitPerMinute)),
		Mailer:   mail.NewSMTPSender(config),
		Payments: payments,
	})
	if err != nil {
		return err
	}

	scheduler := jobs.NewScheduler(logger, repos.resets)
	if err := scheduler.Register(config.CleanupSchedule); err != nil {
		return err
	}
	scheduler.Start()

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)

	return srv.Stop(shutdownCtx)
}
