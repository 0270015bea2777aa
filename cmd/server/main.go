package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazarly/listing-service/internal/adapter/httpapi"
	natsAdapter "github.com/bazarly/listing-service/internal/adapter/messaging/nats"
	"github.com/bazarly/listing-service/internal/adapter/repository/cache"
	mongoRepo "github.com/bazarly/listing-service/internal/adapter/repository/mongodb"
	catalogusecase "github.com/bazarly/listing-service/internal/catalog/usecase"
	"github.com/bazarly/listing-service/internal/config"
	"github.com/bazarly/listing-service/internal/listing/ranges"
	listingusecase "github.com/bazarly/listing-service/internal/listing/usecase"
	"github.com/bazarly/listing-service/internal/listing/validation"
	"github.com/bazarly/listing-service/internal/platform/logger"
	"github.com/bazarly/listing-service/internal/platform/metrics"
	"github.com/bazarly/listing-service/internal/platform/tracer"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()

	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		appLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger.Info("Application starting", zap.String("service_name", cfg.ServiceName))

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := mongoClient.Ping(ctxPing, nil); err != nil {
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	appLogger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))
	db := mongoClient.Database(cfg.MongoDatabase)

	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			// The schema cache degrades to in-process only; not fatal.
			appLogger.Warn("Redis unavailable, schema cache runs in-process only", zap.Error(err))
			redisClient = nil
		}
	}

	natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
	if err != nil {
		appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer natsPublisher.Close()

	metricsManager := metrics.NewManager("listing_service")
	go func() {
		if err := metrics.StartServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server error", zap.Error(err))
		}
	}()

	catalogRepo := mongoRepo.NewCatalogRepository(db, appLogger)
	listingRepo, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}
	attributeRepo, err := mongoRepo.NewAttributeRepository(mongoClient, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize AttributeRepository", zap.Error(err))
	}
	favoriteRepo, err := mongoRepo.NewFavoriteRepository(db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize FavoriteRepository", zap.Error(err))
	}

	schemaCache, err := cache.NewSchemaCache(redisClient, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize schema cache", zap.Error(err))
	}

	rangeTable := ranges.DefaultTable()
	if cfg.RangeTablePath != "" {
		rangeTable, err = ranges.LoadTable(cfg.RangeTablePath)
		if err != nil {
			appLogger.Fatal("Failed to load range-alias table", zap.Error(err))
		}
	}
	classifier := ranges.NewClassifier(rangeTable)

	suggesters := validation.NewSuggesterRegistry()
	suggesters.Register("quarter", validation.NewQuarterSuggester())

	validator := validation.NewValidator(suggesters, appLogger,
		validation.WithSuggestTimeout(time.Duration(cfg.SuggestTimeoutSeconds)*time.Second),
		validation.WithFailureHook(func(fieldType string) {
			metricsManager.ValidationFailuresTotal.WithLabelValues(fieldType).Inc()
		}),
	)

	catalogUC := catalogusecase.NewCatalogUsecase(catalogRepo, schemaCache, appLogger)
	listingUC := listingusecase.NewListingUsecase(
		listingRepo, attributeRepo, catalogUC, validator, classifier, natsPublisher,
		listingusecase.Hooks{
			OnPublish: metricsManager.ListingsPublishedTotal.Inc,
			OnEdit:    metricsManager.ListingEditsTotal.Inc,
		},
		appLogger,
	)
	searchUC := listingusecase.NewSearchUsecase(
		listingRepo, attributeRepo, favoriteRepo, classifier,
		listingusecase.SearchHooks{
			OnSearch: func(_ string, elapsed time.Duration) {
				metricsManager.SearchesTotal.Inc()
				metricsManager.SearchLatency.Observe(elapsed.Seconds())
			},
		},
		appLogger,
	)
	favoriteUC := listingusecase.NewFavoriteUsecase(favoriteRepo, listingRepo, appLogger)

	handler := httpapi.NewHandler(catalogUC, listingUC, searchUC, favoriteUC, metricsManager, appLogger)
	router := httpapi.NewRouter(handler, appLogger)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown error", zap.Error(err))
	}
	appLogger.Info("Application stopped")
}
