package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront-merchandising-service/internal/api"
	"storefront-merchandising-service/internal/config"
	"storefront-merchandising-service/internal/merch"
	"storefront-merchandising-service/internal/service"
	"storefront-merchandising-service/internal/store"
)

const (
	defaultAppName = "StorefrontMerchandising" // App name for logger
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found or failed to load, relying on system environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", defaultAppName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)
	logger.Println("INFO: Starting service...")

	// --- Configuration Loading ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}
	logger.Printf("INFO: Configuration loaded for APP_ENV: %s, LogLevel: %s", cfg.AppEnv, cfg.LogLevel)

	// --- Merchandising Rules ---
	rules, err := merch.LoadRules(cfg.Merch.RulesFile)
	if err != nil {
		logger.Fatalf("FATAL: Failed to load merchandising rules: %v", err)
	}
	if cfg.Merch.RulesFile == "" {
		logger.Println("INFO: Using embedded default merchandising rules.")
	} else {
		logger.Printf("INFO: Merchandising rules loaded from %s", cfg.Merch.RulesFile)
	}

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize database connection: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		logger.Fatalf("FATAL: Failed to ping database: %v", err)
	}
	logger.Println("INFO: Database connection established and configured successfully.")
	dbStore := store.NewPostgresStore(db)

	// --- View History ---
	history, redisClient := setupHistoryStore(logger, cfg.Redis)

	// --- Service & API Handlers ---
	curator := merch.NewCurator(rules, merch.WithLogger(logger, cfg.Debug()))
	svc := service.New(dbStore, dbStore, history, curator,
		service.WithLogger(logger),
		service.WithPoolLimit(cfg.Merch.PoolLimit),
		service.WithCountdown(cfg.Merch.CountdownTick, cfg.Merch.CampaignRefresh),
	)
	httpAPIHandler := api.NewHTTPHandler(svc)
	grpcAPIHandler := api.NewGRPCHandler(svc)

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger, cfg.HttpServer.CORSAllowedOrigins)
	registerHealthCheck(httpRouter, logger, db, redisClient)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("FATAL: HTTP server ListenAndServe error: %v", err)
		}
		logger.Println("INFO: HTTP server has stopped.")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(logger, grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatalf("FATAL: Failed to listen for gRPC on port %s: %v", cfg.GrpcServer.Port, err)
	}

	go func() {
		logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("FATAL: gRPC server Serve error: %v", err)
		}
		logger.Println("INFO: gRPC server has stopped.")
	}()

	// --- Graceful Shutdown ---
	closers := []io.Closer{dbStore}
	if redisClient != nil {
		closers = append(closers, redisClient)
	}
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, closers, shutdownComplete)

	<-shutdownComplete
	logger.Println("INFO: Service shutdown sequence finished.")
}

// setupHistoryStore picks Redis when configured, else a process-local store.
func setupHistoryStore(logger *log.Logger, cfg config.RedisConfig) (store.HistoryStore, *redis.Client) {
	if !cfg.Enabled() {
		logger.Println("WARN: REDIS_ADDR not set, recently viewed history is kept in memory.")
		return store.NewMemoryHistoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatalf("FATAL: Failed to ping Redis at %s: %v", cfg.Addr, err)
	}
	logger.Printf("INFO: View history stored in Redis at %s (TTL %s).", cfg.Addr, cfg.HistoryTTL)
	return store.NewRedisHistoryStore(client, cfg.HistoryTTL), client
}

func setupBaseMiddleware(router *chi.Mux, logger *log.Logger, allowedOrigins []string) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(api.CORS(allowedOrigins))
	logger.Println("INFO: Base HTTP middleware registered.")
}

func registerHealthCheck(router *chi.Mux, logger *log.Logger, db *sql.DB, redisClient *redis.Client) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus := "healthy"
		if err := db.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
			logger.Printf("WARN: Health check DB ping failed: %v", err)
		}
		historyStatus := "memory"
		if redisClient != nil {
			historyStatus = "healthy"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				historyStatus = "unhealthy"
				logger.Printf("WARN: Health check Redis ping failed: %v", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, but payload indicates detailed status
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"database":    dbStatus,
			"viewHistory": historyStatus,
		})
	})
	logger.Printf("INFO: HTTP health check registered at %s", healthPath)
}

func setupGRPCServer(logger *log.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer()

	api.RegisterMerchandisingServer(s, grpcAPIHandler)
	logger.Printf("INFO: %s gRPC service registered.", api.MerchandisingServiceName)

	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	logger.Println("INFO: gRPC health check service registered.")

	reflection.Register(s)
	logger.Println("INFO: gRPC reflection service registered.")

	return s
}

func waitForShutdown(
	logger *log.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	closers []io.Closer,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Printf("INFO: Received signal: %s. Starting graceful shutdown...", receivedSignal)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Countdown streams never finish on their own, so GracefulStop is bounded by the shutdown timeout.
	logger.Println("INFO: Attempting to gracefully shut down gRPC server...")
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	logger.Println("INFO: Attempting to gracefully shut down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	} else {
		logger.Println("INFO: HTTP server gracefully shut down.")
	}

	select {
	case <-stoppedGrpc:
		logger.Println("INFO: gRPC server gracefully shut down.")
	case <-shutdownCtx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", shutdownCtx.Err())
		logger.Println("INFO: Forcing gRPC server stop...")
		grpcServer.Stop()
		logger.Println("INFO: gRPC server forced stop.")
	}

	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Printf("WARN: Error closing %T: %v", c, err)
		}
	}

	logger.Println("INFO: Graceful shutdown sequence completed.")
}
