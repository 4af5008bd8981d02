// Package main is the entry point for the web tools API server.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brad-luo/web-tools/internal/auth"
	"github.com/brad-luo/web-tools/internal/config"
	"github.com/brad-luo/web-tools/internal/database"
	"github.com/brad-luo/web-tools/internal/handler"
	"github.com/brad-luo/web-tools/internal/middleware"
	"github.com/brad-luo/web-tools/internal/pkg/response"
	"github.com/brad-luo/web-tools/internal/repository"
	"github.com/brad-luo/web-tools/internal/service"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Starting web tools API",
		slog.String("environment", cfg.Server.Environment),
		slog.Int("port", cfg.Server.Port),
		slog.Int("ai_chat_daily_limit", cfg.Quota.AIChatDailyLimit),
	)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	if err := db.RunMigrations(cfg.Database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database migrations completed")

	redis, err := database.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Stores and services
	store := repository.NewStore(db.DB())
	repos := store.Repos()

	identity := service.NewIdentityService(store, logger)
	ledger, err := service.NewQuotaService(repos.Usage, cfg.Quota.AIChatDailyLimit, logger)
	if err != nil {
		log.Fatalf("Failed to create quota ledger: %v", err)
	}
	oauth := service.NewOAuthService(&cfg.Auth, identity)
	accounts := service.NewAccountService(repos.Accounts, repos.Linkages, cfg.Auth.AdminEmails, logger)
	projects := service.NewProjectService(repos.Projects)
	catalog := service.NewCatalogService(cfg.Catalog.Dir, logger)
	calendars := service.NewCalendarService(cfg.Calendar, catalog, redis, logger)
	relay := service.NewChatRelay(cfg.Chat, logger)

	if len(oauth.GetSupportedProviders()) == 0 {
		logger.Warn("No OAuth providers configured; sign-in is disabled")
	}
	if !relay.Enabled() {
		logger.Warn("Chat upstream not configured; /api/chat will answer 503")
	}

	sessions := auth.NewSessionManager(cfg.Auth)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	authn := middleware.NewAuthenticator(sessions, tokens)

	authHandler := handler.NewAuthHandler(oauth, sessions, tokens, cfg.Auth.DashboardURL, logger)
	quotaHandler := handler.NewQuotaHandler(ledger, logger)
	chatHandler := handler.NewChatHandler(relay, ledger, logger)
	accountHandler := handler.NewAccountHandler(accounts)
	projectHandler := handler.NewProjectHandler(projects)
	configHandler := handler.NewConfigHandler(catalog)
	calendarHandler := handler.NewCalendarHandler(calendars)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.Get("/health", healthHandler())
	r.Get("/ready", readyHandler(db, redis))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(authn.OptionalAuth)
		r.Use(middleware.RateLimit(redis, middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Server.RateLimitRPM,
			BurstSize:         cfg.Server.RateLimitBurst,
		}, logger))

		// Chat streams for as long as the upstream does.
		r.With(authn.RequireAuth).Mount("/chat", chatHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				response.OK(w, map[string]string{
					"name":    "Web Tools API",
					"version": "1.0.0",
				})
			})

			r.With(middleware.Compress).Mount("/config/projects", projectHandler.Routes(authn.RequireAuth))
			r.With(middleware.Compress).Mount("/config", configHandler.Routes())

			r.Group(func(r chi.Router) {
				r.Use(authn.RequireAuth)

				r.Post("/auth/token", authHandler.IssueToken)
				r.Mount("/ai-chat/limit", quotaHandler.Routes())
				r.Mount("/user", accountHandler.Routes())
				r.Mount("/admin", accountHandler.AdminRoutes())
				r.Mount("/calendars", calendarHandler.Routes())
			})
		})
	})

	r.With(chimiddleware.Timeout(cfg.Server.RequestTimeout)).Mount("/auth", authHandler.Routes())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  time.Minute,
	}

	go func() {
		logger.Info("Server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	logger.Info("Server stopped gracefully")
}

// healthHandler succeeds whenever the process is serving.
func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

// readyHandler verifies the database and Redis connections.
func readyHandler(db *database.Postgres, redis *database.Redis) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")

		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","component":"database"}`))
			return
		}

		if err := redis.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","component":"redis"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","database":"connected","redis":"connected"}`))
	}
}
