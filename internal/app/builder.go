package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/EgorLis/infdot-upload/internal/attachment"
	"github.com/EgorLis/infdot-upload/internal/auth/apikey"
	"github.com/EgorLis/infdot-upload/internal/auth/password"
	"github.com/EgorLis/infdot-upload/internal/config"
	"github.com/EgorLis/infdot-upload/internal/domain"
	redisx "github.com/EgorLis/infdot-upload/internal/infra/cache/redis"
	"github.com/EgorLis/infdot-upload/internal/infra/database/postgres"
	s3storage "github.com/EgorLis/infdot-upload/internal/infra/storage/s3"
	"github.com/EgorLis/infdot-upload/internal/lock"
	"github.com/EgorLis/infdot-upload/internal/logger"
	"github.com/EgorLis/infdot-upload/internal/notify"
	"github.com/EgorLis/infdot-upload/internal/transport/web"
	"github.com/EgorLis/infdot-upload/internal/upload"
)

type App struct {
	config *config.Config
	server *web.Server
	log    zerolog.Logger
	repo   *postgres.PGRepo
	cache  *redisx.Cache
}

func Build(ctx context.Context, cfg *config.Config, base zerolog.Logger) (*App, error) {
	base.Info().Msgf("\n  configuration: %s-------------------", cfg)

	base.Info().Msg("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, logger.Component(base, "postgres"), cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Info().Msg("PostgreSQL is initialized")

	base.Info().Msg("init S3 storage")
	s3, err := s3storage.New(ctx, s3storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		PathStyle: cfg.S3PathStyle,
	}, logger.Component(base, "s3"))
	if err != nil {
		pgRepo.Close()
		return nil, fmt.Errorf("failed init s3: %w", err)
	}

	base.Info().Msg("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, logger.Component(base, "redis"))
	if err := rc.Ping(ctx); err != nil {
		pgRepo.Close()
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Info().Msg("Redis is initialized")

	reg := prometheus.NewRegistry()
	if err := registerMetrics(reg); err != nil {
		pgRepo.Close()
		rc.Close()
		return nil, fmt.Errorf("failed register metrics: %w", err)
	}

	uploadLog := logger.Component(base, "upload")
	users := apikey.NewCachedUsers(pgRepo, rc, int(cfg.AuthCacheTTL.Seconds()), logger.Component(base, "apikey"))
	locks := lock.NewStore(rc, cfg.UploadLockTTL)
	creator := attachment.NewStore(s3, pgRepo, locks, logger.Component(base, "attachment"))

	var notifier domain.Notifier
	if cfg.NotifyEnabled() {
		signer := notify.NewSigner(cfg.NotifySecret, cfg.NotifyIssuer, 24*time.Hour)
		notifier = notify.New(rc, signer, cfg.NotifyChannel, cfg.NotifiedEvents, logger.Component(base, "notify"))
	}

	svc := upload.New(upload.Deps{
		Users:       users,
		Passwords:   password.NewDefault(),
		Projects:    pgRepo,
		Attachments: pgRepo,
		Creator:     creator,
		Notifier:    notifier,
	}, uploadLog)

	base.Info().Msg("init Server")
	server := web.New(logger.Component(base, "server"), cfg, web.Deps{
		Uploader: svc,
		DB:       pgRepo,
		Cache:    rc,
		Storage:  s3,
		Metrics:  reg,
	})
	base.Info().Msg("Server is initialized")

	base.Info().Msg("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		repo:   pgRepo,
		cache:  rc,
	}, nil
}

func registerMetrics(reg *prometheus.Registry) error {
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}
	if err := upload.RegisterMetrics(reg); err != nil {
		return err
	}
	return notify.RegisterMetrics(reg)
}

// Run работает до отмены ctx или падения сервера
func (a *App) Run(ctx context.Context) error {
	a.log.Info().Msg("start application...")

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Run() }()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	a.log.Info().Msg("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return runErr
}
