package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-retail-service/config"
	"github.com/fekuna/omnipos-retail-service/internal/auth/dto"
	authRepoPkg "github.com/fekuna/omnipos-retail-service/internal/auth/repository"
	authUCPkg "github.com/fekuna/omnipos-retail-service/internal/auth/usecase"
	"github.com/fekuna/omnipos-retail-service/internal/catalog"
	"github.com/fekuna/omnipos-retail-service/internal/pos"
	"github.com/fekuna/omnipos-retail-service/internal/product"
	prodRepoPkg "github.com/fekuna/omnipos-retail-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-retail-service/internal/product/usecase"
	saleRepoPkg "github.com/fekuna/omnipos-retail-service/internal/sale/repository"
	saleUCPkg "github.com/fekuna/omnipos-retail-service/internal/sale/usecase"
	"github.com/fekuna/omnipos-retail-service/internal/scanner"
	"github.com/fekuna/omnipos-retail-service/pkg/broker"
	"github.com/fekuna/omnipos-retail-service/pkg/cache"
	"github.com/fekuna/omnipos-retail-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-retail-service/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	scannerPath := flag.String("scanner", "", "line-oriented barcode reader device; stdin when empty")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "warn",
		DisableCaller:     true,
		DisableStacktrace: true,
	})
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	var publisher saleUCPkg.Publisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer producer.Close()
		publisher = producer
	}

	authUC := authUCPkg.NewAuthUseCase(authRepoPkg.NewPGRepository(db), redisClient, authUCPkg.Config{
		SecretKey:  cfg.Auth.SecretKey,
		SessionTTL: cfg.Auth.SessionTTL,
	}, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepoPkg.NewPGRepository(db), redisClient, nil, appLogger)
	saleUC := saleUCPkg.NewSaleUseCase(saleRepoPkg.NewPGRepository(db), publisher, redisClient, product.CatalogCacheKey, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := authUC.SignIn(ctx, &dto.Credentials{
		Email:    os.Getenv("POS_EMAIL"),
		Password: os.Getenv("POS_PASSWORD"),
	})
	if err != nil {
		appLogger.Fatal("Could not sign in (set POS_EMAIL and POS_PASSWORD)", zap.Error(err))
	}
	defer authUC.SignOut(context.Background(), session.Token)

	term := pos.NewTerminal(catalog.NewCache(prodUC), saleUC, cfg.Checkout.SubmitTimeout, appLogger)
	term.SetSeller(session.UserID)
	if err := term.Start(ctx); err != nil {
		appLogger.Fatal("Could not load catalog", zap.Error(err))
	}

	input := scanner.NewLineDevice(os.Stdin)
	var codes scanner.Device = input
	if *scannerPath != "" {
		f, err := os.Open(*scannerPath)
		if err != nil {
			appLogger.Fatal("Could not open scanner", zap.String("path", *scannerPath), zap.Error(err))
		}
		defer f.Close()
		codes = scanner.NewLineDevice(f)
	}

	console := &pos.Console{Term: term, Input: input, Scanner: codes, Out: os.Stdout}
	if err := console.Run(ctx); err != nil {
		appLogger.Error("console stopped", zap.Error(err))
	}
}
