package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"famtreebot/internal/api"
	"famtreebot/internal/chatbot"
	"famtreebot/internal/config"
	"famtreebot/internal/repository/postgres"
	"famtreebot/internal/service"
	"famtreebot/internal/session"
	"famtreebot/internal/telegram"
	"famtreebot/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// A .env file is optional; in production everything comes from the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting famtreebot...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := config.NewDatabase(cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate("migrations"); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Session store
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		l.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	sessions := session.NewRedisStore(redisClient)

	// Repositories
	userRepo := postgres.NewUserRepository(db.DB)
	treeRepo := postgres.NewTreeRepository(db.DB)
	memberRepo := postgres.NewMemberRepository(db.DB)
	eventRepo := postgres.NewEventRepository(db.DB)

	// Services
	familySvc := service.NewFamilyService(userRepo, treeRepo, memberRepo, eventRepo, l)
	accessSvc := service.NewAccessService(treeRepo, l)
	lockMgr := service.NewLockManager(memberRepo, l)

	// Conversation engine
	engine := chatbot.NewEngine(familySvc, accessSvc, lockMgr, sessions, l)

	// HTTP server (webhook + status + metrics)
	apiServer := api.NewServer(engine, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		l.Info("Shutting down HTTP server...")
		return httpServer.Close()
	})

	// Telegram transport is optional: the webhook alone is enough to run.
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, engine, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}
		g.Go(func() error {
			return bot.Start(ctx)
		})
	}

	l.Info("famtreebot started successfully")

	if err := g.Wait(); err != nil {
		l.Errorf("Shutdown error: %v", err)
	}

	l.Info("famtreebot stopped")
}
