package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/mind-engage/instructor-dashboard/internal/api/http"
	auth "github.com/mind-engage/instructor-dashboard/internal/auth/middleware"
	"github.com/mind-engage/instructor-dashboard/internal/config"
	"github.com/mind-engage/instructor-dashboard/internal/course"
	"github.com/mind-engage/instructor-dashboard/internal/course/remote"
	"github.com/mind-engage/instructor-dashboard/internal/dashboard"
	"github.com/mind-engage/instructor-dashboard/internal/db"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Mode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	policy, err := dashboard.ParsePolicy(cfg.BreakdownPolicy)
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	// --- DB (accounts; course data too when SOURCE=sql) ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer dbh.Close()

	var (
		src      course.Source
		importer api.Importer
	)
	switch cfg.Source {
	case config.SourceSQL:
		store := course.NewSQLStore(dbh, cfg.DBDriver)
		src, importer = store, store
	case config.SourceRemote:
		src = remote.New(remote.Config{
			BaseURL:      cfg.UpstreamBaseURL,
			TokenURL:     cfg.UpstreamTokenURL,
			ClientID:     cfg.UpstreamClientID,
			ClientSecret: cfg.UpstreamSecret,
			Timeout:      cfg.UpstreamTimeout,
		})
	default:
		logger.Fatal("config: unknown SOURCE", zap.String("source", string(cfg.Source)))
	}
	views := dashboard.NewRegistry(src, policy, logger.Named("dashboard"))
	defer views.CloseAll()

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	users := auth.SQLUsers{DB: dbh}
	creds := []auth.Credentials{users, auth.AdminCredentials{User: cfg.AdminUser, PassHash: cfg.AdminPassHash}}
	if cfg.Mode == config.ModeOffline {
		creds = append(creds, auth.DevCredentials{})
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, creds...))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(users, cfg.Mode == config.ModeOffline))

		api.MountCourses(pr, views, importer)
		api.MountStaff(pr, dbh)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("source", string(cfg.Source)),
		zap.String("db", cfg.DBDriver),
		zap.String("policy", string(policy)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}

// newLogger is human-readable in offline mode and JSON otherwise.
func newLogger(mode config.Mode) (*zap.Logger, error) {
	if mode == config.ModeOffline {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
