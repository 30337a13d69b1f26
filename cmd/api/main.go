package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"foodrescue-backend/internal/adapter/geocode"
	httpadp "foodrescue-backend/internal/adapter/http"
	"foodrescue-backend/internal/adapter/middleware"
	"foodrescue-backend/internal/adapter/notify"
	"foodrescue-backend/internal/adapter/repository/mysql"
	sessionadp "foodrescue-backend/internal/adapter/session"
	"foodrescue-backend/internal/adapter/storage"
	"foodrescue-backend/internal/config"
	"foodrescue-backend/internal/domain/notification"
	"foodrescue-backend/internal/infrastructure/broker"
	"foodrescue-backend/internal/infrastructure/cache"
	"foodrescue-backend/internal/infrastructure/db"
	"foodrescue-backend/internal/infrastructure/logger"
	"foodrescue-backend/internal/usecase/approval"
	"foodrescue-backend/internal/usecase/dashboard"
	"foodrescue-backend/internal/usecase/identity"
	"foodrescue-backend/internal/usecase/offer"
	"foodrescue-backend/internal/usecase/user"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), zl)
	if err != nil {
		zl.Fatal("open database", zap.Error(err))
	}
	if cfg.DBAutoMigrate {
		if err := db.Migrate(gdb); err != nil {
			zl.Fatal("migrate database", zap.Error(err))
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		zl.Fatal("database handle", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zl.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	users := mysql.NewUserRepository(gdb)
	offers := mysql.NewOfferRepository(gdb)
	assignments := mysql.NewAssignmentRepository(gdb)
	templates := mysql.NewNotificationRepository(gdb)
	tx := mysql.NewGormUoW(gdb)

	var transport notify.Transport = notify.NewLogTransport(zl)
	if cfg.SMTPHost != "" {
		transport = notify.NewSMTPTransport(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
	}
	mailer := notify.NewMailer(templates, users, transport, zl)
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mailer.SeedTemplates(seedCtx); err != nil {
		zl.Warn("seed email templates", zap.Error(err))
	}
	cancelSeed()

	fanout := notify.NewOfferPostedHandler(offers, users, mailer, cfg.AppURL, zl)
	inproc := notify.NewInProcessEvents(fanout, zl)
	var events notification.Events = inproc
	var nc *nats.Conn
	var sub *broker.Subscriber
	if cfg.NATSURL != "" {
		if nc, err = broker.Connect(cfg.NATSURL, zl); err != nil {
			zl.Fatal("connect nats", zap.Error(err))
		}
		sub, err = broker.Subscribe(nc, broker.SubscriberConfig{
			Subject: notification.SubjectOfferPosted,
			Queue:   "foodrescue-notify",
			Handler: fanout.HandleMessage,
		}, zl)
		if err != nil {
			zl.Fatal("subscribe offer events", zap.Error(err))
		}
		events = notify.NewNATSEvents(broker.NewPublisher(nc))
	}

	images, err := storage.NewLocal(cfg.StorageDir, cfg.StoragePublicURL)
	if err != nil {
		zl.Fatal("open storage", zap.Error(err))
	}
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, rdb, cfg.GeocodeCacheTTL(), zl)

	sessions := sessionadp.NewRedisStore(rdb)
	tokens := sessionadp.NewJWTTokens(cfg.JWTSecret, "foodrescue-backend")

	identityUC := identity.NewUsecase(users, tx, sessions, tokens, cfg.SessionTTL(), zl)
	offerUC := offer.NewUsecase(offer.Deps{
		Users:       users,
		Offers:      offers,
		Assignments: assignments,
		UoW:         tx,
		Geocoder:    geocoder,
		Images:      images,
		Events:      events,
		Log:         zl,
	})
	approvalUC := approval.NewUsecase(users, tx, sessions, mailer, cfg.AppURL, cfg.SupportEmail, zl)
	userUC := user.NewUsecase(users, tx, sessions, geocoder, zl)
	dashboardUC := dashboard.NewUsecase(users, offers, assignments, zl)

	checks := map[string]httpadp.Check{
		"db":    sqlDB.PingContext,
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	if nc != nil {
		checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New(nc.Status().String())
			}
			return nil
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.HTTPErrorHandler = httpadp.ErrorHandler(zl)
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(zl))
	e.Use(echomw.BodyLimit("12M"))

	httpadp.Register(e, httpadp.Handlers{
		Health:    httpadp.NewHandler(checks),
		Auth:      httpadp.NewAuthHandler(identityUC),
		Offers:    httpadp.NewOfferHandler(offerUC),
		Dashboard: httpadp.NewDashboardHandler(dashboardUC, approvalUC),
		Admin:     httpadp.NewAdminHandler(approvalUC, userUC),
		Profiles:  httpadp.NewProfileHandler(userUC),
	}, httpadp.RouterConfig{
		Sessions:   identityUC,
		Redis:      rdb,
		IdempTTL:   cfg.IdempTTL(),
		StorageDir: images.Root(),
		Log:        zl,
	})

	go func() {
		addr := ":" + cfg.AppPort
		zl.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	if err := inproc.Wait(ctx); err != nil {
		zl.Warn("offer fan-out still running at shutdown", zap.Error(err))
	}
	if sub != nil {
		sub.Stop()
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			zl.Warn("nats drain", zap.Error(err))
		}
	}
	zl.Info("stopped")
}
