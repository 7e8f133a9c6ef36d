package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bssaj-admin/internal/apiclient"
	"bssaj-admin/internal/audit"
	"bssaj-admin/internal/auth"
	"bssaj-admin/internal/cache"
	"bssaj-admin/internal/config"
	"bssaj-admin/internal/db"
	"bssaj-admin/internal/form"
	"bssaj-admin/internal/httpx"
	"bssaj-admin/internal/images"
	"bssaj-admin/internal/metrics"
	"bssaj-admin/internal/middleware"
	"bssaj-admin/internal/resources"
	"bssaj-admin/internal/screen"
	"bssaj-admin/internal/validation"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()
	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var store cache.Cache = cache.NewMemory(4096, max(time.Hour, cfg.CacheTTL()))
	var previewStore cache.Cache = cache.NewMemoryBounded(1024, cfg.PreviewMaxBytes(), cfg.PreviewTTL())
	if cfg.RedisURL != "" || cfg.RedisAddr != "" {
		var redisCache *cache.RedisCache
		var err error
		if cfg.RedisURL != "" {
			redisCache, err = cache.NewRedisFromURL(cfg.RedisURL)
		} else {
			redisCache = cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		}
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		logger.Info("redis connected")
		store, previewStore = redisCache, redisCache
	} else {
		logger.Info("redis not configured, using in-memory cache")
	}

	var recorder audit.Recorder = audit.Nop{}
	var activity screen.ActivityLog
	if cfg.MongoURI != "" {
		client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Disconnect(context.Background())
		if err := db.EnsureIndexes(ctx, cols); err != nil {
			logger.Error("index creation failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		svc := audit.NewService(audit.NewRepository(cols.Activity), logger, cfg.Timezone)
		recorder, activity = svc, svc
		logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	} else {
		logger.Info("activity log disabled")
	}

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	manager := &auth.Manager{Secret: []byte(cfg.JWTSecret), AccessTTL: cfg.SessionTTL(), Issuer: "bssaj-admin"}

	collector := metrics.New("bssaj_admin")
	api := apiclient.New(apiclient.Options{
		BaseURL:    cfg.APIBaseURL,
		Token:      cfg.APIToken,
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Log:        logger,
		Metrics:    collector,
		RequestID:  middleware.RequestIDFromContext,
	})

	renderer, err := screen.NewRenderer()
	if err != nil {
		logger.Error("template parse failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	previews := form.NewPreviewStore(previewStore, cfg.PreviewTTL())

	deps := screen.Deps{
		Client:       api,
		Cache:        store,
		CacheTTL:     cfg.CacheTTL(),
		Binder:       form.NewBinder(validation.New()),
		Encoder:      form.NewEncoder(),
		Previews:     previews,
		Images:       images.NewAllowlist(cfg.ImageHosts),
		Audit:        recorder,
		Renderer:     renderer,
		Log:          logger,
		Metrics:      collector,
		CookieSecure: cfg.CookieSecure,
		MaxFileBytes: cfg.UploadMaxBytes(),
		CheckOrigin:  middleware.AllowedOrigin(cfg.PublicOrigin),
	}
	modules := resources.Modules(deps)
	activityScreen := &screen.Activity{
		Source:       activity,
		Resources:    resources.Collections(),
		Renderer:     renderer,
		Log:          logger,
		CookieSecure: cfg.CookieSecure,
	}

	nav := make([]screen.NavItem, 0, len(modules)+1)
	for _, m := range modules {
		nav = append(nav, m.Nav())
	}
	nav = append(nav, activityScreen.Nav())
	renderer.SetNav(nav)

	session := &screen.Session{
		Manager: manager,
		Credentials: screen.Credentials{
			User:         cfg.AdminUser,
			Password:     cfg.AdminPassword,
			PasswordHash: cfg.AdminPasswordHash,
		},
		Renderer:     renderer,
		Audit:        recorder,
		Limiter:      middleware.NewRateLimiter(cfg.RateLimitLogin, time.Duration(cfg.RateLimitWindowSec)*time.Second),
		Log:          logger,
		CookieSecure: cfg.CookieSecure,
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, collector))
	r.Use(middleware.SameOrigin(cfg.PublicOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", collector.Handler())
	session.Mount(r)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminAuth(manager, "/login"))
		(&screen.Previews{Store: previews, Log: logger}).Mount(admin)
		for _, m := range modules {
			m.Mount(admin)
		}
		activityScreen.Mount(admin)
		admin.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, nav[0].Href, http.StatusSeeOther)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr), slog.String("api", cfg.APIBaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
