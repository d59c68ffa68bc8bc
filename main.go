// Package main provides the main entry point for the segment service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vidyaloop/segment-service/app/handlers"
	"github.com/vidyaloop/segment-service/app/middleware"
	"github.com/vidyaloop/segment-service/app/router"
	"github.com/vidyaloop/segment-service/app/services"
	businessflow "github.com/vidyaloop/segment-service/business_flow"
	"github.com/vidyaloop/segment-service/config"
	"github.com/vidyaloop/segment-service/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting segment service...")

	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-sigChan
	log.Println("Shutting down gracefully...")

	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs the standard logger at stdout, a rotated file, or
// both depending on configuration.
func setupLogging(cfg config.LoggingConfig) {
	switch cfg.Output {
	case "file":
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}))
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeGateway picks the mentor-data backend at process start. The
// rest of the application only sees the Gateway interface.
func initializeGateway(cfg *config.ProductionConfig) (repository.Gateway, error) {
	switch cfg.Gateway.Mode {
	case config.GatewayModeGraphQL:
		log.Printf("Using GraphQL gateway at %s", cfg.Gateway.GraphQLEndpoint)
		return repository.NewGraphQLGateway(cfg.Gateway.GraphQLEndpoint, cfg.Gateway.AdminSecret, cfg.Gateway.Timeout), nil
	default:
		db, err := initializeDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		return repository.NewStoreGateway(db, cfg.Resolver.MembershipBatchMax), nil
	}
}

// startMetricsServer serves Prometheus metrics on a dedicated port. The
// returned stop function shuts the listener down.
func startMetricsServer(cfg config.MetricsConfig) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	go func() {
		log.Printf("Metrics server starting on :%d%s", cfg.Port, cfg.Path)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	return func() {
		if err := srv.Close(); err != nil {
			log.Printf("Metrics server close error: %v", err)
		}
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	gateway, err := initializeGateway(cfg)
	if err != nil {
		return nil, err
	}

	tokenService := services.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	log.Printf("Token service initialized with issuer: %s", cfg.JWT.Issuer)

	// Initialize flows
	resolverFlow := businessflow.NewMentorResolverFlow(gateway, cfg.Resolver.FanoutConcurrency, cfg.Resolver.DefaultLimit)
	segmentFlow := businessflow.NewSegmentFlow(gateway, resolverFlow)
	botMappingFlow := businessflow.NewBotMappingFlow(gateway)
	lookupFlow := businessflow.NewLookupFlow(gateway)

	// Initialize handlers
	mentorHandler := handlers.NewMentorHandler(resolverFlow)
	segmentHandler := handlers.NewSegmentHandler(segmentFlow)
	botMappingHandler := handlers.NewBotMappingHandler(botMappingFlow)
	lookupHandler := handlers.NewLookupHandler(lookupFlow)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	appRouter := router.NewFiberRouter(
		mentorHandler,
		segmentHandler,
		botMappingHandler,
		lookupHandler,
		authMiddleware,
		cfg.Server.AllowedOrigins,
		cfg.Metrics.Enabled,
	)

	if cfg.Metrics.Enabled {
		stopFuncs = append(stopFuncs, startMetricsServer(cfg.Metrics))
	}

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
