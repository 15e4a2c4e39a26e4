package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	membershipUsecases "guildpass/internal/application/membership/usecases"
	"guildpass/internal/infrastructure/config"
	"guildpass/internal/infrastructure/database"
	"guildpass/internal/infrastructure/discord"
	"guildpass/internal/infrastructure/email"
	"guildpass/internal/infrastructure/payment"
	"guildpass/internal/infrastructure/pubsub"
	"guildpass/internal/infrastructure/repository"
	"guildpass/internal/infrastructure/scheduler"
	"guildpass/internal/shared/logger"
)

func main() {
	// Parse environment from command line or env variable
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting reconciliation worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	memberRepo := repository.NewMemberRepository(database.Get(), log)
	mappingRepo := repository.NewPriceRoleMappingRepository(database.Get(), log)

	stripeClient := payment.NewStripeClient(cfg.Stripe.APIKey, log)

	guildClient, err := discord.NewGuildClient(cfg.Discord.BotToken, log)
	if err != nil {
		log.Fatalw("failed to create discord client", "error", err)
	}

	syncUC := membershipUsecases.NewSyncMemberSubscriptionsUseCase(memberRepo, mappingRepo, stripeClient, guildClient, log)
	reconciliationUC := membershipUsecases.NewRunReconciliationUseCase(memberRepo, syncUC, log)

	interval := time.Duration(cfg.Reconciliation.IntervalMinutes) * time.Minute
	reconciliationScheduler := scheduler.NewReconciliationScheduler(reconciliationUC, interval, log)

	emailService := email.NewSMTPEmailService(email.SMTPConfig{
		Host:        cfg.Email.SMTPHost,
		Port:        cfg.Email.SMTPPort,
		Username:    cfg.Email.SMTPUser,
		Password:    cfg.Email.SMTPPassword,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Coupon emails published by the API land here.
	couponBus := pubsub.NewRedisCouponEventBus(redisClient, log)
	err = couponBus.Subscribe(ctx, func(ctx context.Context, event pubsub.CouponEmailEvent) {
		if err := emailService.SendCouponEmail(ctx, event.CustomerEmail, event.CouponCode, event.PlanID); err != nil {
			log.Errorw("failed to send coupon email",
				"error", err,
				"platform_sub_sid", event.PlatformSubSID,
			)
			return
		}
		log.Infow("coupon email sent", "platform_sub_sid", event.PlatformSubSID)
	})
	if err != nil {
		log.Fatalw("failed to subscribe to coupon events", "error", err)
	}

	reconciliationScheduler.Start(ctx)

	log.Infow("reconciliation worker started", "interval", interval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Infow("received signal, shutting down", "signal", sig)

	reconciliationScheduler.Stop()
	cancel()

	log.Infow("reconciliation worker stopped")
}
