package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automartines/autoonline/internal/auth"
	"github.com/automartines/autoonline/internal/cache"
	"github.com/automartines/autoonline/internal/config"
	"github.com/automartines/autoonline/internal/db"
	httpx "github.com/automartines/autoonline/internal/http"
	"github.com/automartines/autoonline/internal/listings"
	"github.com/automartines/autoonline/internal/notifications"
	"github.com/automartines/autoonline/internal/observability"
	"github.com/automartines/autoonline/internal/redisclient"
	"github.com/automartines/autoonline/internal/repo/postgres"
	"github.com/automartines/autoonline/internal/storage/images"
	"github.com/automartines/autoonline/internal/vehicle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}
	if err := db.EnsureAdminUser(ctx, pool, cfg, log); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	store, err := images.Open(ctx, cfg, log)
	if err != nil {
		log.Error("image store init failed", "err", err)
		os.Exit(1)
	}
	var uploadsRoot string
	if local, ok := store.(*images.Local); ok {
		uploadsRoot = local.Root()
	}

	usersRepo := postgres.NewUsersRepo(pool, prom)
	listingsRepo := postgres.NewListingsRepo(pool, prom)
	contactsRepo := postgres.NewContactsRepo(pool, prom)

	listingSvc := listings.NewService(
		listingsRepo,
		images.Instrument(store, prom),
		images.Policy{MaxBytes: cfg.MaxUploadBytes, MaxFiles: cfg.MaxUploadFiles},
		log,
		prom,
	)

	deps := httpx.Deps{
		Config:      cfg,
		Log:         log,
		Prom:        prom,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		DB:          pool,
		Tokens:      auth.NewManager(cfg.JWTSecret, cfg.JWTTTL()),
		Users:       usersRepo,
		Listings:    listingSvc,
		Contacts:    contactsRepo,
		Notifier:    newNotifier(cfg, log),
		UploadsRoot: uploadsRoot,
	}

	lookupCache, closeCache := newLookupCache(ctx, cfg, log)
	defer closeCache()
	if cfg.KBAUsername != "" {
		deps.Vehicles = vehicle.NewService(vehicle.NewKBAClient(cfg.KBABaseURL, cfg.KBAUsername, nil), lookupCache, log)
	}

	router := httpx.NewRouter(deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// uploads of up to 15 images need more than the usual 15s
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", store.Driver())
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func newNotifier(cfg config.Config, log *slog.Logger) notifications.Notifier {
	if cfg.SMTPHost == "" {
		log.Info("smtp not configured, notifications are logged only")
		return notifications.NewLogNotifier(log)
	}

	smtp, err := notifications.NewSMTPNotifier(notifications.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		Inbox:    cfg.ContactInbox,
	}, log)
	if err != nil {
		log.Warn("smtp notifier disabled", "err", err)
		return notifications.NewLogNotifier(log)
	}

	return notifications.NewProtectedNotifier(smtp, notifications.ProtectedNotifierConfig{
		Timeout:          8 * time.Second,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})
}

// newLookupCache prefers Redis so every instance shares lookups.
func newLookupCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Store, func()) {
	const ttl = 24 * time.Hour

	if cfg.RedisAddr == "" {
		return cache.NewMemory(ttl), func() {}
	}

	rc := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rc.Ping(pingCtx); err != nil {
		log.Warn("redis unavailable, using in-memory lookup cache", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return cache.NewMemory(ttl), func() {}
	}

	return cache.NewRedis(rc.Raw(), "autoonline:", ttl), func() { _ = rc.Close() }
}
