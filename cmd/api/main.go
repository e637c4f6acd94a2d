package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "site-report-backend/internal/adapter/http"
	"site-report-backend/internal/adapter/middleware"
	"site-report-backend/internal/adapter/repository/postgres"
	"site-report-backend/internal/config"
	"site-report-backend/internal/infrastructure/cache"
	"site-report-backend/internal/infrastructure/db"
	"site-report-backend/internal/infrastructure/mail"
	"site-report-backend/internal/infrastructure/pdf"
	"site-report-backend/internal/infrastructure/push"
	"site-report-backend/internal/schema"
	"site-report-backend/internal/usecase/approval"
	"site-report-backend/internal/usecase/artifact"
	"site-report-backend/internal/usecase/checklist"
	"site-report-backend/internal/usecase/notification"
	"site-report-backend/internal/usecase/photo"
	"site-report-backend/internal/usecase/report"
	"site-report-backend/pkg/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if cfg.DotenvErr != nil {
		log.Warn("config", "err", cfg.DotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", "err", err)
	}

	gdb, err := db.OpenGorm(cfg.DatabaseURL, cfg.LogMode, log)
	if err != nil {
		log.Fatal("open database", "err", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("database handle", "err", err)
	}
	defer sqlDB.Close()

	// ctx ends on SIGINT or SIGTERM and stops the background loops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ev, err := schema.New(gdb, log, schema.Revisions(schema.Options{NotificationTTL: cfg.NotificationTTL(), Log: log})...)
	if err != nil {
		log.Fatal("schema chain", "err", err)
	}
	applied, err := ev.Upgrade(ctx)
	if err != nil {
		log.Fatal("evolve schema", "err", err)
	}
	log.Info("schema at head", "head", ev.Head(), "applied", len(applied))

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Warn("redis unavailable, idempotency disabled", "addr", cfg.RedisAddr, "err", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Leave the interface nil without a key; the coordinator then records
	// every delivery as failed instead of calling a typed nil.
	var mailer approval.Mailer
	if cfg.EmailAPIKey != "" {
		s, err := mail.NewSender(mail.Config{
			APIKey:    cfg.EmailAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
			BaseURL:   cfg.EmailBaseURL,
		}, log)
		if err != nil {
			log.Fatal("email sender", "err", err)
		}
		mailer = s
	} else {
		log.Warn("EMAIL_API_KEY not set, approval emails will fail")
	}

	tx := postgres.NewGormUoW(gdb)
	loc := cfg.Location()

	photos := photo.NewUsecase(postgres.NewPhotoRepository(gdb), tx, cfg.UploadDir, cfg.MaxPhotoBytes, log)
	composer := pdf.NewComposer(cfg.PDFTemplatePath, pdf.DefaultLayout(), log)
	arts := artifact.NewUsecase(composer, photos, tx, cfg.DefaultApproverName, loc, log)
	approvals := approval.NewUsecase(tx, arts, mailer, push.NewLogSender(log), approval.Options{
		Location:        loc,
		NotificationTTL: cfg.NotificationTTL(),
		Log:             log,
	})
	notifications := notification.NewUsecase(postgres.NewNotificationRepository(gdb), postgres.NewUserRepository(gdb), log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return uuid.NewString() }}),
		echomw.Logger(),
		echomw.Recover(),
		echomw.BodyLimit(strconv.FormatInt(cfg.MaxPhotoBytes+(1<<20), 10)),
	)

	httpadp.Register(e, httpadp.Handlers{
		Health:        httpadp.NewHandler(sqlDB),
		Reports:       httpadp.NewReportHandler(report.NewUsecase(postgres.NewReportRepository(gdb), tx, log), arts, log),
		Photos:        httpadp.NewPhotoHandler(photos, log),
		Approvals:     httpadp.NewApprovalHandler(approvals, log),
		Notifications: httpadp.NewNotificationHandler(notifications, log),
		Checklist:     httpadp.NewChecklistHandler(checklist.NewUsecase(tx, log), log),
	}, middleware.Session([]byte(cfg.SessionSecret)), middleware.Idempotency(rdb, cfg.IdempotencyTTL(), log))

	go purgeNotifications(ctx, notifications, log)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", "err", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// purgeNotifications drops expired notifications once an hour.
func purgeNotifications(ctx context.Context, uc *notification.Usecase, log *logger.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		if _, err := uc.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
			log.Warn("purge notifications", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
