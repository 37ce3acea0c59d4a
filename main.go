package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"gem-auction/internal/assets"
	auth "gem-auction/internal/authService"
	bidding "gem-auction/internal/biddingService"
	"gem-auction/internal/config"
	"gem-auction/internal/migrate"
	"gem-auction/internal/notify"
	"gem-auction/internal/repository"
	"gem-auction/internal/repository/postgres"
	"gem-auction/internal/server"
	"gem-auction/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auctions, users, closeRepo := openRepositories(ctx, cfg)
	defer closeRepo()

	notifier, closeNotifier := openNotifier(ctx, cfg)
	defer closeNotifier()

	biddingSvc := bidding.NewBiddingService(auctions, users,
		bidding.WithNotifier(notifier),
		bidding.WithAssetStore(assets.NewLocalStore(cfg.AssetDir)),
	)
	authSvc := auth.NewAuthService(users, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.BcryptCost)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			utils.Fatal("Failed to bootstrap admin account", map[string]any{"error": err.Error()})
		}
	}
	if cfg.SeedDemo {
		prepopulateAuctions(ctx, biddingSvc)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.SetupRouter(biddingSvc, authSvc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("Starting auction server", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("Failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("Shutting down auction server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("Graceful shutdown failed", map[string]any{"error": err.Error()})
	}
}

// openRepositories picks PostgreSQL when DATABASE_URL is set and the in-memory store otherwise
func openRepositories(ctx context.Context, cfg config.Config) (repository.AuctionDB, repository.UserDB, func()) {
	if cfg.DatabaseURL == "" {
		repo := repository.NewMemoryRepo()
		utils.Info("Using in-memory storage", nil)
		return repo, repo, func() {}
	}

	if _, err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		utils.Fatal("Failed to apply migrations", map[string]any{"error": err.Error()})
	}
	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		utils.Fatal("Failed to connect to database", map[string]any{"error": err.Error()})
	}
	utils.Info("Using PostgreSQL storage", nil)
	return postgres.NewAuctionRepo(db), postgres.NewUserRepo(db), db.Close
}

// openNotifier builds the configured event broadcaster
func openNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, func()) {
	switch cfg.Notifier {
	case config.NotifierRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			utils.Fatal("Failed to connect to redis", map[string]any{"addr": cfg.RedisAddr, "error": err.Error()})
		}
		return notify.NewRedisNotifier(client, cfg.RedisChannel), func() { _ = client.Close() }
	case config.NotifierAMQP:
		n, err := notify.DialAMQP(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			utils.Fatal("Failed to connect to rabbitmq", map[string]any{"error": err.Error()})
		}
		return n, func() { _ = n.Close() }
	default:
		return notify.LogNotifier{}, func() {}
	}
}

// prepopulateAuctions adds sample gem lots so a fresh instance has something to bid on
func prepopulateAuctions(ctx context.Context, svc *bidding.BiddingService) {
	now := time.Now().UTC()
	lots := []bidding.NewAuction{
		{Name: "Blue Sapphire", Description: "Ceylon, 3.2ct, unheated", StartingPrice: 250000, BidStartTime: now, BidEndTime: now.Add(24 * time.Hour)},
		{Name: "Padparadscha", Description: "Ratnapura, 1.8ct", StartingPrice: 400000, BidStartTime: now, BidEndTime: now.Add(48 * time.Hour)},
		{Name: "Cat's Eye Chrysoberyl", Description: "Elahera, 5.1ct", StartingPrice: 150000, BidStartTime: now.Add(time.Hour), BidEndTime: now.Add(72 * time.Hour)},
	}

	for _, lot := range lots {
		v, err := svc.CreateAuction(ctx, "system", lot)
		if err != nil {
			utils.Warn("Failed to seed auction", map[string]any{"name": lot.Name, "error": err.Error()})
			continue
		}
		utils.Debug("Seeded auction", map[string]any{"auction_id": v.Item.ItemID, "name": v.Item.Name})
	}
}
