// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/olegiv/sangbad-cms/internal/auth"
	"github.com/olegiv/sangbad-cms/internal/cache"
	"github.com/olegiv/sangbad-cms/internal/config"
	"github.com/olegiv/sangbad-cms/internal/handler"
	"github.com/olegiv/sangbad-cms/internal/handler/api"
	"github.com/olegiv/sangbad-cms/internal/logging"
	"github.com/olegiv/sangbad-cms/internal/middleware"
	"github.com/olegiv/sangbad-cms/internal/render"
	"github.com/olegiv/sangbad-cms/internal/scheduler"
	"github.com/olegiv/sangbad-cms/internal/service"
	"github.com/olegiv/sangbad-cms/internal/session"
	"github.com/olegiv/sangbad-cms/internal/store"
	"github.com/olegiv/sangbad-cms/internal/upload"
	"github.com/olegiv/sangbad-cms/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

const (
	eventRetention   = 90 * 24 * time.Hour
	uploadsMaxAge    = 7 * 24 * 60 * 60
	editorAPIRate    = 5.0
	editorAPIBurst   = 30
	memoryCacheItems = 10000
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Sangbad - Bengali news CMS\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_TOKEN_SECRET     Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_DB_PATH          SQLite database path (default: ./data/sangbad.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_SERVER_HOST      Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_TOKEN_TTL        Bearer token lifetime (default: 24h)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_UPLOADS_DIR      Local image directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_CLOUDINARY_URL   Cloudinary URL; replaces local image storage (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_REDIS_URL        Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_CORS_ORIGINS     Comma-separated origins for bearer clients (default: *)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANGBAD_DO_SEED          Create the admin account and default categories\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info *version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if cfg.DefaultDBPath {
		slog.Warn("SANGBAD_DB_PATH not set, using default", "path", cfg.DBPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Opening the pool also runs migrations.
	slog.Info("initializing database", "path", cfg.DBPath)
	pool := store.NewPool(cfg.DBPath, store.DefaultDBConfig())
	db, err := pool.DB()
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, store.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	cacher, isRedis := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cacheTTL,
		MaxSize:         memoryCacheItems,
		CleanupInterval: time.Minute,
	})
	defer func() { _ = cacher.Close() }()
	if cfg.UseRedisCache() && !isRedis {
		logger.Warn("cache is process-local; instances will not share invalidations")
	}

	var cachePinger handler.Pinger
	if p, ok := cacher.(handler.Pinger); ok && isRedis {
		cachePinger = p
	}

	host, uploadsDir, err := newUploadHost(cfg)
	if err != nil {
		return err
	}

	events := service.NewEventService(db)
	content := service.NewContentService(db, service.ContentOptions{
		ExcerptLength: cfg.ExcerptLength,
		Cache:         cacher,
		CacheTTL:      cacheTTL,
		Events:        events,
	})
	categories := service.NewCategoryService(db, cacher, cacheTTL, events)
	users := service.NewUserService(db, events)
	media := service.NewMediaService(host, events)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	loginGate := handler.NewLoginGate(users, loginProtection)
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	renderer, err := render.New(render.Config{SessionManager: sessionManager})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	sched := scheduler.New(logger)
	jobs := []struct {
		name, description, schedule string
		fn                          scheduler.JobFunc
	}{
		{"refresh-popular", "Rebuild the most-read lists", scheduler.PopularRefreshSchedule, content.RefreshPopular},
		{"sweep-login-failures", "Forget expired login failures and lockouts", scheduler.LoginSweepSchedule, func(context.Context) error {
			loginProtection.Sweep()
			return nil
		}},
		{"cleanup-events", "Delete audit events older than 90 days", scheduler.EventCleanupSchedule, func(ctx context.Context) error {
			n, err := events.DeleteOldEvents(ctx, eventRetention)
			if err == nil && n > 0 {
				slog.Info("old events deleted", "count", n)
			}
			return err
		}},
	}
	for _, j := range jobs {
		if err := sched.Add(j.name, j.description, j.schedule, j.fn); err != nil {
			return fmt.Errorf("scheduling %s: %w", j.name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	health := handler.NewHealthHandler(db, cachePinger, uploadsDir, info)
	tokenDecoder := auth.NewTokenDecoder(cfg.TokenSecret)
	resolver := auth.NewResolver(tokenDecoder, auth.NewSessionDecoder(sessionManager))

	// CSRF keys are derived so the token secret is never used directly.
	csrfKey := sha256.Sum256([]byte("csrf:" + cfg.TokenSecret))
	csrfConfig := middleware.DefaultCSRFConfig(csrfKey[:], cfg.IsDevelopment())
	csrfConfig.Tokens = tokenDecoder

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestPath)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF(csrfConfig))
	r.Use(middleware.Guard(resolver, middleware.DefaultPolicy))

	api.NewHandler(api.Deps{
		Content:     content,
		Categories:  categories,
		Users:       users,
		Events:      events,
		Media:       media,
		Login:       loginGate,
		Protection:  loginProtection,
		Sessions:    sessionManager,
		Tokens:      tokens,
		Health:      health,
		Jobs:        sched,
		EditorLimit: middleware.PrincipalRateLimit(editorAPIRate, editorAPIBurst),
	}).Routes(r)

	authHandler := handler.NewAuthHandler(renderer, sessionManager, loginGate)
	adminHandler := handler.NewAdminHandler(renderer, content, users, events)
	frontendHandler := handler.NewFrontendHandler(renderer, content, categories, logger)

	if uploadsDir != "" {
		r.With(middleware.StaticCache(uploadsMaxAge)).Get(upload.URLPrefix+"*", uploadsFileServer(uploadsDir))
	}

	r.Group(func(r chi.Router) {
		r.Use(loginProtection.Middleware())
		r.Post(handler.RouteSignIn, authHandler.SignIn)
	})
	r.Get(handler.RouteSignIn, authHandler.SignInForm)
	r.Post(handler.RouteSignOut, authHandler.SignOut)
	r.Get(handler.RouteUnauthorized, authHandler.Unauthorized)
	r.Get(handler.RouteAdmin, adminHandler.Dashboard)
	r.Get(handler.RouteEditor, adminHandler.Editor)

	r.Get(handler.RouteRoot, frontendHandler.Home)
	r.Get(handler.RouteSection, frontendHandler.Section)
	r.Get(handler.RouteArticle, frontendHandler.Article)
	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// newUploadHost returns the configured image host and, for the local host,
// the directory served under /uploads/.
func newUploadHost(cfg *config.Config) (upload.Host, string, error) {
	if cfg.UseCloudinary() {
		h, err := upload.NewCloudinaryHost(cfg.CloudinaryURL, upload.DefaultFolder)
		if err != nil {
			return nil, "", fmt.Errorf("initializing cloudinary: %w", err)
		}
		slog.Info("image host initialized", "backend", "cloudinary")
		return h, "", nil
	}

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return nil, "", fmt.Errorf("creating uploads directory: %w", err)
	}
	slog.Info("image host initialized", "backend", "local", "dir", cfg.UploadsDir)
	return upload.NewLocalHost(cfg.UploadsDir), cfg.UploadsDir, nil
}

// uploadsFileServer serves stored images without directory listings.
func uploadsFileServer(dir string) http.HandlerFunc {
	fs := http.StripPrefix(strings.TrimSuffix(upload.URLPrefix, "/"), http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	}
}
