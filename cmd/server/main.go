package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsite/internal/config"
	"eventsite/internal/metrics"
	"eventsite/internal/notify"
	"eventsite/internal/render"
	"eventsite/internal/scheduler"
	"eventsite/internal/server"
	"eventsite/internal/service"
	"eventsite/internal/storage"
	"eventsite/internal/storage/media"
	"eventsite/internal/storage/providers"
	httptransport "eventsite/internal/transport/http"
)

func main() {
	cfg := config.MustLoad()

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := storage.InitDB(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store, err := openMediaStore(ctx, cfg.Media)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Error("close media store", "err", err)
		}
	}()

	m := metrics.New()
	allProviders := providers.New(db)
	renderer := render.New()

	deps := service.PublicDeps{
		Templates: allProviders.TemplateProvider,
		Wishes:    allProviders.WishProvider,
		Stats:     allProviders.StatsProvider,
		Owners:    allProviders.AuthProvider,
		Notifier: notify.New(notify.SMTPConfig{
			Addr:     cfg.SMTP.Addr,
			From:     cfg.SMTP.From,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLS:      cfg.SMTP.TLS,
		}),
		Metrics:  m,
		Renderer: renderer,
		BaseURL:  cfg.BaseURL,
	}

	authService := service.NewAuthService(allProviders.AuthProvider, cfg.JWT.Secret, cfg.JWT.TTL)
	userService := service.NewUserService(allProviders.UserProvider)

	svc := httptransport.Services{
		Auth: authService,
		Users: struct {
			*service.UserService
			*service.AuthService
		}{userService, authService},
		Templates:  service.NewTemplateService(allProviders.TemplateProvider, renderer),
		Microsites: service.NewMicrositeService(allProviders.MicrositeProvider, allProviders.GuestProvider, deps),
		Sites:      service.NewSiteService(allProviders.SiteProvider, allProviders.GuestProvider, deps),
		Guests:     service.NewGuestService(allProviders.GuestProvider, allProviders.ScopeProvider, allProviders.StatsProvider),
		Wishes:     service.NewWishService(allProviders.WishProvider, allProviders.ScopeProvider),
		Media: service.NewMediaService(allProviders.MediaProvider, store, m, service.MediaConfig{
			BaseURL:        cfg.BaseURL,
			MaxUploadBytes: cfg.Media.MaxUploadBytes,
			MaxImageWidth:  cfg.Media.MaxImageWidth,
		}),
	}

	scheduler.NewStatsScheduler(allProviders.StatsProvider, m, cfg.StatsInterval).Start(ctx)

	router := httptransport.Router(svc, httptransport.Options{
		JWTSecret: cfg.JWT.Secret,
		Metrics:   m,
		Logger:    logger,
		ShowStack: !cfg.IsProd(),
	})

	logger.Info("starting server", "env", cfg.Env, "media_backend", cfg.Media.Backend)
	return server.Start(ctx, cfg.Server.Addr(), router, cfg.CORS.Origin)
}

func openMediaStore(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Backend {
	case config.MediaGridFS:
		store, err := media.OpenGridFS(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open gridfs media store: %w", err)
		}
		return store, nil
	default:
		store, err := media.OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt media store: %w", err)
		}
		return store, nil
	}
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
