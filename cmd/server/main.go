package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/jobs"
	"github.com/iliyamo/hotel-reservation/internal/mailer"
	"github.com/iliyamo/hotel-reservation/internal/metrics"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/payment"
	"github.com/iliyamo/hotel-reservation/internal/queue"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/router"
	"github.com/iliyamo/hotel-reservation/internal/service"
	"github.com/iliyamo/hotel-reservation/internal/session"
	"github.com/iliyamo/hotel-reservation/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := config.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database())
	if err != nil {
		log.Fatalw("database", "error", err)
	}
	defer db.Close()
	applied, err := database.Migrate(ctx, db)
	if err != nil {
		log.Fatalw("migrate", "error", err)
	}
	log.Infow("schema ready", "applied", applied)

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mets := metrics.New(registry)

	// repositories
	accounts := repository.NewAccountRepo(db)
	tokens := repository.NewTokenRepo(db)
	floors := repository.NewFloorRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db)
	bans := repository.NewBanRepo(db)
	clients := repository.NewClientRepo(db)
	countries := repository.NewCountryRepo(db)
	managers := mustStaffRepo(db, model.KindManager, log)
	receptionists := mustStaffRepo(db, model.KindReceptionist, log)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		log.Fatalw("storage", "driver", cfg.StorageDriver, "error", err)
	}
	avatars := storage.NewAvatars(blobs)

	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.NotifyQueue, log)
	defer publisher.Close()
	consumer := queue.NewConsumer(cfg.RabbitURL, cfg.NotifyQueue, accounts, mailer.NewSMTPMailer(cfg.SMTP, log), log)
	queue.StartNotificationConsumer(ctx, consumer)

	var gateway service.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeCurrency, nil)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	// services
	banSvc := service.NewBanService(bans, accounts, nil)
	authSvc := service.NewAuthService(accounts, tokens, newSessionStore(cfg, rdb, log), banSvc, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTL:      cfg.AccessTTL(),
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, log, nil)
	clientSvc := service.NewClientService(clients, countries, avatars, cfg.BcryptCost, log)
	reservationSvc := service.NewReservationService(reservations, rooms, clients, publisher, mets, log, nil)
	paymentSvc := service.NewPaymentService(reservationSvc, reservations, gateway, cfg.PublicBaseURL, log)

	scheduler := jobs.NewScheduler(log)
	if err := scheduler.AddTokenCleanup(cfg.CleanupSchedule, tokens); err != nil {
		log.Fatalw("cleanup schedule", "schedule", cfg.CleanupSchedule, "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.Validator{}
	e.HTTPErrorHandler = handler.NewErrorHandler(cfg.Debug(), log)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(mets.Middleware())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Static("/images", cfg.StorageRoot+"/images")
	e.Static("/clients", cfg.StorageRoot+"/clients")
	e.GET("/metrics", echo.WrapHandler(mets.Handler()))

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, clientSvc, cfg.JWTSecret),
		Floors:        handler.NewFloorHandler(service.NewFloorService(floors, accounts)),
		Rooms:         handler.NewRoomHandler(service.NewRoomService(rooms, floors, accounts)),
		Reservations:  handler.NewReservationHandler(reservationSvc, paymentSvc),
		Bans:          handler.NewBanHandler(banSvc, cfg.BanNoticeCountdown),
		Managers:      handler.NewStaffHandler(service.NewStaffService(managers, avatars, cfg.BcryptCost, log)),
		Receptionists: handler.NewStaffHandler(service.NewStaffService(receptionists, avatars, cfg.BcryptCost, log)),
		Clients:       handler.NewClientHandler(clientSvc),
	}, router.Guards{
		Authenticate: middleware.Authenticate(authSvc, cfg.JWTSecret),
		BanGate: middleware.BanGate(middleware.BanGateConfig{
			Bans:      banSvc,
			Sessions:  authSvc,
			Recorder:  mets,
			Countdown: cfg.BanNoticeCountdown,
			Log:       log,
		}),
		Cache: middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	go func() {
		addr := ":" + cfg.Port
		log.Infow("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server", "error", err)
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Errorw("shutdown", "error", err)
	}
}

func mustStaffRepo(db *sql.DB, kind model.ActorKind, log *zap.SugaredLogger) *repository.StaffRepo {
	r, err := repository.NewStaffRepo(db, kind)
	if err != nil {
		log.Fatalw("staff repository", "kind", kind, "error", err)
	}
	return r
}

func newSessionStore(cfg config.Config, rdb *redis.Client, log *zap.SugaredLogger) session.Store {
	if rdb == nil {
		log.Warn("sessions are kept in process memory")
		return session.NewMemoryStore(cfg.SessionTTL)
	}
	return session.NewRedisStore(rdb, cfg.SessionPrefix, cfg.SessionTTL)
}

func newBlobStore(cfg config.Config) (storage.BlobStore, error) {
	if cfg.StorageDriver == "cloudinary" {
		return storage.NewCloudinaryStore(cfg.CloudinaryURL)
	}
	return storage.NewLocalStore(cfg.StorageRoot), nil
}
