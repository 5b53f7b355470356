// ==============================================================================
// COMPLIANCE SERVICE - cmd/compliance/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"onboard/internal/audit"
	"onboard/internal/auth"
	"onboard/internal/domain"
	"onboard/internal/handler"
	"onboard/internal/kyc"
	"onboard/internal/middleware"
	"onboard/internal/repository/postgres"
	"onboard/internal/risk"
	"onboard/internal/riskconfig"
	"onboard/internal/rules"
	"onboard/internal/screening"
	"onboard/pkg/cache"
	"onboard/pkg/config"
	"onboard/pkg/logger"
	"onboard/pkg/metrics"
	"onboard/pkg/validator"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("compliance-service")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	// Database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}

	// Repositories
	clientRepo := postgres.NewClientRepository(db)
	statusRepo := postgres.NewKYCStatusRepository(db)
	profileRepo := postgres.NewRiskProfileRepository(db)
	configRepo := postgres.NewScoringConfigRepository(db)
	screeningRepo := postgres.NewScreeningRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Collaborators
	m := metrics.New()

	auditor := audit.NewRecorder(auditRepo, cfg.Scoring.AuditQueueSize, log)
	auditor.Start()
	defer auditor.Close()

	redisCache := cache.NewFromClient(redisClient)
	configHolder := riskconfig.NewHolder(configRepo, redisCache, cfg.Scoring.CacheTTL, log)
	configHolder.OnChange(func(c *rules.Config) {
		log.Info("Scoring configuration swapped", map[string]interface{}{
			"version":  c.Version,
			"checksum": c.Checksum,
		})
	})

	// Services
	screeningService := screening.NewService(
		screening.NewSeededListProvider(), screeningRepo, clientRepo, auditor, m, log,
	)
	riskEngine := risk.NewEngine(
		configHolder, profileRepo, clientRepo, statusRepo, screeningRepo, auditor, m, log,
	)
	kycService := kyc.NewService(
		statusRepo, clientRepo, riskEngine, screeningService, auditor, m, log,
	)
	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)

	// Handlers
	val := validator.New()
	clientHandler := handler.NewClientHandler(clientRepo, val, log)
	kycHandler := handler.NewKYCHandler(kycService, statusRepo, val, log)
	riskHandler := handler.NewRiskHandler(riskEngine, val, log)
	screeningHandler := handler.NewScreeningHandler(screeningService, log)
	configHandler := handler.NewConfigHandler(configHolder, configRepo, val, log)
	authHandler := handler.NewAuthHandler(authService, val, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	if cfg.Server.RateLimitEnabled {
		r.Use(middleware.NewRateLimiter(redisClient, cfg.Server.RateLimitPerMin, time.Minute).Limit)
	}
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.BodyLimit(1 << 20))

	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)

	api.HandleFunc("/auth/totp/enroll", authHandler.EnrollTOTP).Methods("POST")
	api.Handle("/auth/users",
		middleware.RequireRole(domain.RoleExecutive)(http.HandlerFunc(authHandler.CreateUser)),
	).Methods("POST")

	api.HandleFunc("/clients", clientHandler.Create).Methods("POST")
	api.HandleFunc("/clients", clientHandler.List).Methods("GET")
	api.HandleFunc("/clients/{id}", clientHandler.Get).Methods("GET")

	api.HandleFunc("/clients/{id}/kyc/start", kycHandler.StartCycle).Methods("POST")
	api.HandleFunc("/clients/{id}/kyc", kycHandler.Status).Methods("GET")
	api.HandleFunc("/clients/{id}/kyc/transition", kycHandler.Transition).Methods("POST")
	api.HandleFunc("/clients/{id}/kyc/history", kycHandler.History).Methods("GET")

	api.HandleFunc("/clients/{id}/risk/compute", riskHandler.Compute).Methods("POST")
	api.HandleFunc("/clients/{id}/risk", riskHandler.Current).Methods("GET")
	api.HandleFunc("/clients/{id}/risk/history", riskHandler.History).Methods("GET")

	api.HandleFunc("/clients/{id}/screen", screeningHandler.Screen).Methods("POST")
	api.HandleFunc("/clients/{id}/screening", screeningHandler.Latest).Methods("GET")

	api.HandleFunc("/config/scoring", configHandler.Current).Methods("GET")
	api.HandleFunc("/config/scoring/refresh", configHandler.Refresh).Methods("POST")
	admin := middleware.RequireRole(domain.RoleComplianceOfficer, domain.RoleExecutive)
	api.Handle("/config/scoring",
		admin(http.HandlerFunc(configHandler.CreateVersion)),
	).Methods("POST")
	api.Handle("/config/scoring/{version}/activate",
		admin(http.HandlerFunc(configHandler.Activate)),
	).Methods("POST")

	// Server with graceful shutdown
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Compliance service starting", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", map[string]interface{}{"error": err.Error()})
	}
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","service":"compliance"}`))
}
