package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutorconnect/internal/admin"
	"tutorconnect/internal/auth"
	"tutorconnect/internal/booking"
	"tutorconnect/internal/classroom"
	"tutorconnect/internal/config"
	"tutorconnect/internal/db"
	"tutorconnect/internal/fee"
	"tutorconnect/internal/logger"
	"tutorconnect/internal/notification"
	"tutorconnect/internal/server"
	"tutorconnect/internal/tutor"
	"tutorconnect/internal/user"
	"tutorconnect/internal/wallet"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Info("Starting TutorConnect API")

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	fees, err := fee.NewPolicy(cfg.PlatformFeePercentage)
	if err != nil {
		logger.Fatalf("Invalid fee policy: %v", err)
	}

	queue := notification.NewQueue(rdb, notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
	}))
	notifier := notification.NewNotifier(queue, cfg.EmailFromName)

	revoker := auth.NewRedisRevoker(rdb)
	userRepo := user.NewRepository()
	ledger := wallet.NewLedger(database, wallet.NewRepository(), cfg.Currency)

	userService := user.NewService(database, userRepo, ledger, revoker, cfg.JWTSecret)
	tutorService := tutor.NewService(database, tutor.NewRepository(), userRepo, notifier)
	bookingService := booking.NewService(
		database,
		booking.NewRepository(),
		userRepo,
		ledger,
		fees,
		classroom.NewIssuer(cfg.MeetingBaseURL, cfg.MeetingRoomPrefix),
		notifier,
	)

	srv := server.New(server.Options{
		Port:           cfg.Port,
		JWTSecret:      cfg.JWTSecret,
		Revoker:        revoker,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Checks: map[string]server.Check{
			"postgres": database.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	}, server.Handlers{
		Users:    user.NewHandler(userService),
		Tutors:   tutor.NewHandler(tutorService),
		Wallets:  wallet.NewHandler(ledger),
		Bookings: booking.NewHandler(bookingService),
		Admin:    admin.NewHandler(admin.NewService(database)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.Start(ctx)
	go reportQueueLength(ctx, queue)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func reportQueueLength(ctx context.Context, queue *notification.Queue) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			queue.QueueLength(ctx)
		}
	}
}
