package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-retail-service/config"
	"github.com/fekuna/omnipos-retail-service/internal/media"
	"github.com/fekuna/omnipos-retail-service/internal/server"
	"github.com/fekuna/omnipos-retail-service/pkg/broker"
	"github.com/fekuna/omnipos-retail-service/pkg/cache"
	"github.com/fekuna/omnipos-retail-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-retail-service/pkg/i18n"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/fekuna/omnipos-retail-service/pkg/search"

	authH "github.com/fekuna/omnipos-retail-service/internal/auth/handler"
	authRepoPkg "github.com/fekuna/omnipos-retail-service/internal/auth/repository"
	authUCPkg "github.com/fekuna/omnipos-retail-service/internal/auth/usecase"

	refH "github.com/fekuna/omnipos-retail-service/internal/reference/handler"
	refRepoPkg "github.com/fekuna/omnipos-retail-service/internal/reference/repository"
	refUCPkg "github.com/fekuna/omnipos-retail-service/internal/reference/usecase"

	"github.com/fekuna/omnipos-retail-service/internal/product"
	prodH "github.com/fekuna/omnipos-retail-service/internal/product/handler"
	prodListenerPkg "github.com/fekuna/omnipos-retail-service/internal/product/listener"
	prodRepoPkg "github.com/fekuna/omnipos-retail-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-retail-service/internal/product/usecase"

	invH "github.com/fekuna/omnipos-retail-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-retail-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-retail-service/internal/inventory/usecase"

	saleH "github.com/fekuna/omnipos-retail-service/internal/sale/handler"
	saleRepoPkg "github.com/fekuna/omnipos-retail-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-retail-service/internal/sale/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 2.5 Initialize i18n
	bundle, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load translations", zap.Error(err))
	}

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	authRepo := authRepoPkg.NewPGRepository(db)
	refRepo := refRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	saleRepo := saleRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka
	kafkaCfg := &broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	}
	var publisher saleUCPkg.Publisher
	var kafkaConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(kafkaCfg)
		defer producer.Close()
		publisher = producer

		kafkaConsumer = broker.NewConsumer(kafkaCfg)
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 5.8 Initialize Elasticsearch
	var indexer prodUCPkg.Indexer
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search falls back to the database)", zap.Error(err))
	} else {
		indexer = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	authUC := authUCPkg.NewAuthUseCase(authRepo, redisClient, authUCPkg.Config{
		SecretKey:  cfg.Auth.SecretKey,
		SessionTTL: cfg.Auth.SessionTTL,
	}, appLogger)
	refUC := refUCPkg.NewReferenceUseCase(refRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, indexer, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, prodUC, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleRepo, publisher, redisClient, product.CatalogCacheKey, appLogger)

	signer := media.NewSigner(media.Config{
		BaseURL:   cfg.Media.BaseURL,
		Bucket:    cfg.Media.Bucket,
		Public:    cfg.Media.Public,
		SignedTTL: cfg.Media.SignedTTL,
		SecretKey: cfg.Media.SecretKey,
	})

	// 6.5 Initialize Listeners
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if kafkaConsumer != nil {
		stockListener := prodListenerPkg.NewStockListener(kafkaConsumer, prodUC, appLogger)
		go stockListener.Start(ctx)
	}

	// 7. Initialize Handlers
	router, err := server.NewRouter(server.Options{
		RateLimit: cfg.RateLimit.Rate,
		Bundle:    bundle,
		Sessions:  authUC,
	}, server.Handlers{
		Auth:      authH.NewAuthHandler(authUC, appLogger),
		Reference: refH.NewReferenceHandler(refUC, appLogger),
		Product:   prodH.NewProductHandler(prodUC, appLogger),
		Inventory: invH.NewInventoryHandler(invUC, appLogger),
		Sale:      saleH.NewSaleHandler(saleUC, appLogger),
		Media:     media.NewHandler(signer),
	})
	if err != nil {
		appLogger.Fatal("Could not build router", zap.Error(err))
	}

	// 8. Start HTTP Server
	httpServer := &http.Server{
		Addr:              withColon(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 9. Start gRPC health server
	lis, err := net.Listen("tcp", withColon(cfg.Server.GRPCPort))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", cfg.Server.GRPCPort))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve grpc", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func withColon(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
