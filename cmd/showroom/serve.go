package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/autodealer/showroom/docs"
	"github.com/autodealer/showroom/internal/api"
	"github.com/autodealer/showroom/internal/api/handler"
	"github.com/autodealer/showroom/internal/core/ports"
	"github.com/autodealer/showroom/internal/core/service"
	"github.com/autodealer/showroom/internal/infrastructure/db/mongo"
	"github.com/autodealer/showroom/internal/infrastructure/db/postgres"
	"github.com/autodealer/showroom/internal/infrastructure/db/redis"
	"github.com/autodealer/showroom/internal/infrastructure/mail"
	"github.com/autodealer/showroom/internal/infrastructure/nats"
	"github.com/autodealer/showroom/internal/infrastructure/push"
	"github.com/autodealer/showroom/internal/infrastructure/queue"
	"github.com/autodealer/showroom/internal/infrastructure/token"
	"github.com/autodealer/showroom/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var skipMigrations bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")
}

type pubsub interface {
	ports.Publisher
	ports.Subscriber
}

func serve(ctx context.Context) error {
	if !skipMigrations {
		if err := postgres.Migrate(cfg.Postgres.URL, logger.For("migrate")); err != nil {
			return err
		}
	}

	// --- Stores ---
	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	mongoClient, mongoDB, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongo.EnsureIndexes(ctx, mongoDB); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	checks := map[string]handler.Pinger{
		"postgres": pool.Ping,
		"mongodb":  func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	var bus pubsub
	switch cfg.PubSub.Driver {
	case "nats":
		nc, err := nats.Connect(nats.Config{URL: cfg.PubSub.NatsURL, Cluster: cfg.PubSub.Cluster, AppID: cfg.PubSub.AppID}, logger.For("nats"))
		if err != nil {
			return err
		}
		defer nc.Close()
		checks["nats"] = nc.Ping
		bus = nc
	default:
		bus = redis.NewPubSub(rdb, redis.Namespace(cfg.PubSub.Cluster, cfg.PubSub.AppID), logger.For("pubsub"))
	}

	// --- Background work ---
	// Workers outlive the signal context so Stop can drain what is buffered.
	workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(queue.Options{
		Workers:     cfg.Tasks.Workers,
		MaxAttempts: cfg.Tasks.MaxAttempts,
		Backoff:     cfg.Tasks.Backoff,
	}, logger.For("dispatcher"))
	dispatcher.Start(workerCtx)
	defer dispatcher.Stop()

	// --- Adapters ---
	var mailer ports.Mailer = mail.NewLogMailer(logger.For("mail"))
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	pusher := push.NewClient(push.Config{
		BaseURL: cfg.Push.BaseURL,
		AppID:   cfg.Push.AppID,
		APIKey:  cfg.Push.APIKey,
		Timeout: cfg.Push.Timeout,
	})
	codec := token.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).WithChannelSecret(cfg.PubSub.Secret)

	var cooldown ports.Cooldown
	if cfg.OTP.ResendCooldown > 0 {
		cooldown = redis.NewCooldown(rdb, cfg.OTP.ResendCooldown)
	}

	// --- Repositories ---
	users := postgres.NewUserRepository(pool)
	rooms := postgres.NewRoomRepository(pool)
	cars := postgres.NewCarRepository(pool)
	bookings := postgres.NewBookingRepository(pool)
	payments := postgres.NewPaymentRepository(pool)
	chats := postgres.NewChatRepository(pool)
	notifications := postgres.NewNotificationRepository(pool)
	otps := postgres.NewOTPRepository(pool)
	resets := postgres.NewPasswordResetRepository(pool)
	settings := postgres.NewSettingsRepository(pool)
	logs := mongo.NewLogRepository(mongoDB)

	// --- Services ---
	otpSvc := service.NewOTPService(otps, cooldown, mailer, dispatcher, service.OTPConfig{
		TTL:         cfg.OTP.TTL,
		Length:      cfg.OTP.Length,
		MaxAttempts: cfg.OTP.MaxAttempts,
	}, logger.For("otp")).WithAttemptCounter(redis.NewAttemptCounter(rdb))
	realtimeSvc := service.NewRealtimeService(bus, bus, codec, chats, dispatcher, logger.For("realtime"))
	notifySvc := service.NewNotificationService(notifications, realtimeSvc, pusher, dispatcher, logger.For("notifications"))
	authSvc := service.NewAuthService(users, resets, otpSvc, codec, mailer, dispatcher, logger.For("auth"))
	userSvc := service.NewUserService(users, otpSvc, logger.For("users"))
	roomSvc := service.NewRoomService(rooms, logger.For("rooms"))
	carSvc := service.NewCarService(cars, rooms, logger.For("cars"))
	bookingSvc := service.NewBookingService(bookings, cars, rooms, notifySvc, logger.For("bookings"))
	paymentSvc := service.NewPaymentService(payments, bookings, notifySvc, logger.For("payments"))
	chatSvc := service.NewChatService(chats, rooms, realtimeSvc, notifySvc, logger.For("chats"))
	adminSvc := service.NewAdminService(service.AdminDeps{
		Users:    users,
		Rooms:    rooms,
		Cars:     cars,
		Bookings: bookings,
		Payments: payments,
		Logs:     logs,
		Settings: settings,
	}, logger.For("admin"))
	recorder := service.NewRequestLogService(service.NewSettingsFlag(settings), logs, logger.For("request-log"))

	realtimeHandler := handler.NewRealtimeHandler(realtimeSvc, logger.For("sse"))
	e := api.NewRouter(api.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(userSvc),
		Rooms:         handler.NewRoomHandler(roomSvc),
		Cars:          handler.NewCarHandler(carSvc),
		Bookings:      handler.NewBookingHandler(bookingSvc),
		Payments:      handler.NewPaymentHandler(paymentSvc),
		Chats:         handler.NewChatHandler(chatSvc),
		Notifications: handler.NewNotificationHandler(notifySvc),
		Realtime:      realtimeHandler,
		Admin:         handler.NewAdminHandler(adminSvc),
		Health:        handler.NewHealthHandler(checks),
	}, api.Options{
		Codec:       codec,
		SetupKey:    cfg.SetupKey,
		Recorder:    recorder,
		Queue:       dispatcher,
		BodyLimit:   cfg.HTTPLog.BodyLimit,
		CORSOrigins: cfg.HTTPLog.CORSOrigins,
		Log:         logger.For("http"),
	})
	// No write timeout: realtime streams stay open until shutdown.
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.RegisterOnShutdown(realtimeHandler.Shutdown)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("pubsub", cfg.PubSub.Driver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}
